package apkread

import (
	"archive/zip"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	"github.com/thanm/go-dex-query/dexapktest"
	"github.com/thanm/go-dex-query/dexread"
)

type entry struct {
	name string
	body []byte
}

func writeZip(t *testing.T, name string, entries []entry) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	out, err := os.Create(path)
	require.NoError(t, err)
	zw := zip.NewWriter(out)
	for _, e := range entries {
		w, err := zw.Create(e.name)
		require.NoError(t, err)
		_, err = w.Write(e.body)
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	require.NoError(t, out.Close())
	return path
}

func testAPK(t *testing.T, extra ...entry) string {
	entries := []entry{
		{"AndroidManifest.xml", []byte("<manifest/>")},
		{"classes.dex", dexapktest.FibonacciDex().Build()},
		{"res/raw/notes.txt", []byte("not a dex")},
		{"classes2.dex", dexapktest.MinimalDex().Build()},
	}
	return writeZip(t, "app.apk", append(entries, extra...))
}

func TestSmallApkRead(t *testing.T) {
	apk := testAPK(t)
	visitor := &dexapktest.CaptureDexApkVisitOperations{}
	require.NoError(t, ReadAPK(apk, visitor))

	var got []string
	for _, r := range visitor.Result {
		// the sha1 depends on the builder layout; keep the rest
		if i := strings.Index(r, " sha1 "); i >= 0 {
			r = r[:i]
		}
		got = append(got, r)
	}
	require.Equal(t, []string{
		"APK " + apk,
		" DEX classes.dex",
		"  class fibonacci [public final] methods: 4",
		"   method id 0 name '<init>' code offset 256",
		"   method id 1 name 'ifibonacci' code offset 288",
		"   method id 2 name 'main' code offset 320",
		"   method id 4 name 'run' code offset 352",
		" DEX classes2.dex",
		"  class foo [public] methods: 0",
	}, got)
}

func TestReadAPKMissing(t *testing.T) {
	err := ReadAPK(filepath.Join(t.TempDir(), "nope.apk"), &dexapktest.CaptureDexApkVisitOperations{})
	require.Error(t, err)
	require.Contains(t, err.Error(), "unable to open APK")
}

func TestReadAPKBadDex(t *testing.T) {
	apk := testAPK(t, entry{"classes3.dex", []byte("garbage!garbage!")})
	err := ReadAPK(apk, &dexapktest.CaptureDexApkVisitOperations{})
	require.ErrorIs(t, err, dexread.ErrNotDex)
	require.Equal(t, fmt.Sprintf("reading apk %s dex classes3.dex: not a DEX file", apk), err.Error())
}

func signatures(t *testing.T, a *Archive) map[string][]dexread.MethodSignature {
	ret := map[string][]dexread.MethodSignature{}
	for _, d := range a.Dexes {
		sigs, err := d.File.MethodSignatures()
		require.NoError(t, err)
		ret[d.Name] = sigs
	}
	return ret
}

func TestDecodeAPK(t *testing.T) {
	apk := testAPK(t)
	a, err := DecodeAPK(apk)
	require.NoError(t, err)
	require.Equal(t, apk, a.Path)
	require.Len(t, a.Dexes, 2)
	require.Equal(t, "classes.dex", a.Dexes[0].Name)
	require.Equal(t, "classes2.dex", a.Dexes[1].Name)
	require.Equal(t, int64(6), a.NumMethods)
	require.Equal(t, int64(2), a.NumClasses)
	require.Equal(t, int64(15), a.NumStrings)
}

func TestDecodeAPKConcurrentMatchesSequential(t *testing.T) {
	var extra []entry
	for i := 3; i < 10; i++ {
		b := dexapktest.FibonacciDex()
		b.Strings[7] = fmt.Sprintf("main%d", i)
		extra = append(extra, entry{fmt.Sprintf("classes%d.dex", i), b.Build()})
	}
	apk := testAPK(t, extra...)

	seq, err := DecodeAPK(apk, WithWorkers(1))
	require.NoError(t, err)
	par, err := DecodeAPK(apk, WithWorkers(8), WithDexOptions(dexread.WithStrict(true)))
	require.NoError(t, err)

	require.Len(t, par.Dexes, 9)
	for i := range seq.Dexes {
		require.Equal(t, seq.Dexes[i].Name, par.Dexes[i].Name)
	}
	require.Equal(t, signatures(t, seq), signatures(t, par))
	require.Equal(t, seq.NumMethods, par.NumMethods)
	require.Equal(t, "main5", signatures(t, par)["classes5.dex"][2].MethodName)
}

func TestDecodeAPKCollectsFailures(t *testing.T) {
	truncated := dexapktest.FibonacciDex().Build()[:200]
	apk := testAPK(t,
		entry{"classes3.dex", []byte("garbage!garbage!")},
		entry{"classes4.dex", truncated},
	)

	a, err := DecodeAPK(apk, WithDexOptions(dexread.WithStrict(true)))
	require.Error(t, err)
	errs := multierr.Errors(err)
	require.Len(t, errs, 2)
	require.ErrorIs(t, errs[0], dexread.ErrNotDex)
	require.Contains(t, errs[0].Error(), "dex classes3.dex")
	require.Contains(t, errs[1].Error(), "dex classes4.dex")

	// the good entries survive
	require.Len(t, a.Dexes, 2)
	require.Equal(t, int64(6), a.NumMethods)
}

func TestDecodeAPKRecoversNonStrictPanic(t *testing.T) {
	truncated := dexapktest.FibonacciDex().Build()[:200]
	a, err := DecodeBlobs("mem", []string{"classes.dex"}, [][]byte{truncated})
	require.Error(t, err)
	require.Contains(t, err.Error(), "malformed dex")
	require.Empty(t, a.Dexes)
}

func TestDecodeAPKRecoversHugeCount(t *testing.T) {
	buf := dexapktest.MinimalDex().Build()
	binary.LittleEndian.PutUint32(buf[96:], 0xffffffff) // class_defs_size
	a, err := DecodeBlobs("mem", []string{"classes.dex"}, [][]byte{buf})
	require.Error(t, err)
	require.Contains(t, err.Error(), "reading apk mem dex classes.dex: malformed dex")
	require.Empty(t, a.Dexes)

	_, err = DecodeBlobs("mem", []string{"classes.dex"}, [][]byte{buf}, WithDexOptions(dexread.WithStrict(true)))
	var be *dexread.BoundsError
	require.ErrorAs(t, err, &be)
	require.Equal(t, "class_defs", be.Section)
}

func TestDecodeBlobsLengthMismatch(t *testing.T) {
	_, err := DecodeBlobs("mem", []string{"classes.dex", "classes2.dex"},
		[][]byte{dexapktest.MinimalDex().Build()})
	require.EqualError(t, err, "mem: 2 dex names for 1 blobs")
}

func TestDecodeBareDex(t *testing.T) {
	path := filepath.Join(t.TempDir(), "classes.dex")
	require.NoError(t, os.WriteFile(path, dexapktest.MinimalDex().Build(), 0644))

	a, err := DecodeAPK(path)
	require.NoError(t, err)
	require.Len(t, a.Dexes, 1)
	require.Equal(t, path, a.Dexes[0].Name)
	sigs, err := a.Dexes[0].File.MethodSignatures()
	require.NoError(t, err)
	require.Equal(t, "bar", sigs[0].MethodName)
}

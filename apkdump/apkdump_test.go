package apkdump

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/thanm/go-dex-query/apkread"
	"github.com/thanm/go-dex-query/dexapktest"
)

func testArchive(t *testing.T) *apkread.Archive {
	t.Helper()
	a, err := apkread.DecodeBlobs("app.apk",
		[]string{"classes.dex", "classes2.dex"},
		[][]byte{dexapktest.FibonacciDex().Build(), dexapktest.MinimalDex().Build()})
	require.NoError(t, err)
	return a
}

func dump(t *testing.T, kind DumpKind) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, Dump(&buf, kind, testArchive(t)))
	return buf.String()
}

func TestParseDumpKind(t *testing.T) {
	for _, k := range []DumpKind{DumpSummary, DumpMethods, DumpStrings, DumpClasses} {
		got, err := ParseDumpKind(k.String())
		require.NoError(t, err)
		require.Equal(t, k, got)
	}
	_, err := ParseDumpKind("everything")
	require.EqualError(t, err, `unknown dump kind "everything" (want one of: summary, methods, strings, classes)`)
	require.Equal(t, "DumpKind(9)", DumpKind(9).String())
}

func TestDumpMethods(t *testing.T) {
	require.Equal(t, `DEX classes.dex
  void fibonacci.<init>()
  int fibonacci.ifibonacci(int)
  void fibonacci.main(java.lang.String[])
  void java.lang.Object.<init>()
  void fibonacci.run()
DEX classes2.dex
  foo foo.bar()
`, dump(t, DumpMethods))
}

func TestDumpClasses(t *testing.T) {
	require.Equal(t, `DEX classes.dex
  public final fibonacci extends java.lang.Object implements java.lang.Runnable (fibonacci.java)
DEX classes2.dex
  public foo
`, dump(t, DumpClasses))
}

func TestDumpStrings(t *testing.T) {
	out := dump(t, DumpStrings)
	require.Contains(t, out, "  3: \"Lfibonacci;\"\n")
	require.Contains(t, out, "DEX classes2.dex\n  0: \"bar\"\n  1: \"foo\"\n")
}

func TestDumpSummary(t *testing.T) {
	out := dump(t, DumpSummary)
	lines := strings.Split(out, "\n")
	require.True(t, strings.HasPrefix(lines[0], "DEX classes.dex version 035 size "))
	require.Equal(t, "  strings: 13 types: 6 protos: 4 fields: 0 methods: 5 classes: 1", lines[1])
	require.Contains(t, out, "  type_list                    count      3 offset ")
	require.Contains(t, out, "  map_list ")
}

func TestDumpUnknownKind(t *testing.T) {
	var buf bytes.Buffer
	require.Error(t, Dump(&buf, DumpKind(42), testArchive(t)))
}

func TestDumperWalk(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	var buf bytes.Buffer
	d := &DexApkDumper{W: &buf, Vlevel: 1, Log: zap.New(core).Sugar()}
	require.NoError(t, Walk(testArchive(t), d))

	out := buf.String()
	require.True(t, strings.HasPrefix(out, "APK app.apk\n DEX classes.dex sha1 "))
	require.Contains(t, out, "  class public final fibonacci methods: 4\n")
	require.Contains(t, out, "   method id 4 name 'run' code offset 352\n")
	require.Contains(t, out, "  class public foo methods: 0\n")
	require.NotZero(t, logs.FilterMessage("num direct methods is 3").Len())

	// verbosity below the message level is dropped
	core, logs = observer.New(zap.DebugLevel)
	d = &DexApkDumper{W: &bytes.Buffer{}, Vlevel: 0, Log: zap.New(core).Sugar()}
	require.NoError(t, Walk(testArchive(t), d))
	require.Zero(t, logs.Len())
}

func TestDumperWalkBareDex(t *testing.T) {
	path := filepath.Join(t.TempDir(), "classes.dex")
	require.NoError(t, os.WriteFile(path, dexapktest.MinimalDex().Build(), 0644))
	a, err := apkread.DecodeAPK(path)
	require.NoError(t, err)
	require.True(t, a.BareDex)

	var buf bytes.Buffer
	require.NoError(t, Walk(a, &DexApkDumper{W: &buf}))
	require.True(t, strings.HasPrefix(buf.String(), " DEX "+path+" sha1 "), buf.String())
	require.NotContains(t, buf.String(), "APK ")
}

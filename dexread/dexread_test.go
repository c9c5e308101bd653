package dexread

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/thanm/go-dex-query/dexapktest"
)

func TestDecodeDescriptor(t *testing.T) {

	type DecodeTest struct {
		Raw     string
		Decoded string
	}
	tests := []DecodeTest{
		{"Lfrob/blar/blix;", "frob.blar.blix"},
		{"[Ljava/lang/Object;", "java.lang.Object[]"},
		{"[[B", "byte[][]"},
		{"[C", "char[]"},
		{"D", "double"},
		{"Z", "boolean"},
		{"<illegal>", "<illegal>"},
		{"[[", "[["},
		{"Lunterminated", "Lunterminated"},
		{"", ""},
	}
	for _, tt := range tests {
		c := PrettyDescriptor(tt.Raw)
		if c != tt.Decoded {
			t.Errorf("DecodeTest: raw=%s decoded='%s' wanted '%s'",
				tt.Raw, c, tt.Decoded)
		}
	}
}

func fibonacciExpected(name string, buf []byte) string {
	return fmt.Sprintf(` DEX %s sha1 %x
		    class fibonacci [public final] methods: 4
		    method id 0 name '<init>' code offset 256
		    method id 1 name 'ifibonacci' code offset 288
		    method id 2 name 'main' code offset 320
		    method id 4 name 'run' code offset 352`, name, buf[12:32])
}

func TestSmallDexRead(t *testing.T) {
	buf := dexapktest.FibonacciDex().Build()
	visitor := &dexapktest.CaptureDexApkVisitOperations{}
	err := ReadDEX(nil, "classes.dex", bytes.NewReader(buf), uint64(len(buf)), visitor)
	require.NoError(t, err)

	actual := strings.Join(visitor.Result, "\n")
	expected := fibonacciExpected("classes.dex", buf)
	if dexapktest.SqueezeWhite(actual) != dexapktest.SqueezeWhite(expected) {
		t.Errorf("TestSmallDexRead: got '%s' expected '%s'",
			actual, expected)
	}
}

func TestSmallDexFileRead(t *testing.T) {
	buf := dexapktest.FibonacciDex().Build()
	path := filepath.Join(t.TempDir(), "classes.dex")
	require.NoError(t, os.WriteFile(path, buf, 0644))

	visitor := &dexapktest.CaptureDexApkVisitOperations{}
	err := ReadDEXFile(path, visitor, WithStrict(true))
	require.NoError(t, err)

	actual := strings.Join(visitor.Result, "\n")
	require.Equal(t, dexapktest.SqueezeWhite(fibonacciExpected(path, buf)),
		dexapktest.SqueezeWhite(actual))
}

func TestNonexistentDexFileRead(t *testing.T) {
	visitor := &dexapktest.CaptureDexApkVisitOperations{}
	err := ReadDEXFile("quix", visitor)
	if err == nil {
		t.Errorf("TestNonexistentDexFileRead: expected error")
		return
	}
	actual := fmt.Sprintf("%v", err)
	expected := "reading dex quix: os.Stat failed(): stat quix: no such file or directory"
	if actual != expected {
		t.Errorf("TestNonexistentDexFileRead: expected '%s' got '%s', f error", expected, actual)
	}
	require.True(t, errors.Is(err, os.ErrNotExist))
}

func TestBadDexFileRead(t *testing.T) {
	visitor := &dexapktest.CaptureDexApkVisitOperations{}
	err := ReadDEXFile("dexread.go", visitor)
	if err == nil {
		t.Errorf("TestBadDexFileRead: expected error")
		return
	}
	actual := fmt.Sprintf("%v", err)
	expected := "reading dex dexread.go: not a DEX file"
	if actual != expected {
		t.Errorf("TestBadDexFileRead: expected '%s' got '%s', f error", expected, actual)
	}
	require.ErrorIs(t, err, ErrNotDex)
	require.Empty(t, visitor.Result)
}

func TestReadDEXInsideAPK(t *testing.T) {
	buf := dexapktest.MinimalDex().Build()
	apk := "app.apk"
	visitor := &dexapktest.CaptureDexApkVisitOperations{}

	err := ReadDEX(&apk, "classes.dex", bytes.NewReader(buf), uint64(len(buf))+1, visitor)
	require.EqualError(t, err, fmt.Sprintf("reading apk app.apk dex classes.dex: expected %d bytes read %d",
		len(buf)+1, len(buf)))

	err = ReadDEX(&apk, "classes.dex", bytes.NewReader(buf), uint64(len(buf)), visitor)
	require.NoError(t, err)
	require.Len(t, visitor.Result, 2)
	require.Equal(t, "  class foo [public] methods: 0", visitor.Result[1])
}

func TestReadDEXStringFailure(t *testing.T) {
	b := dexapktest.MinimalDex()
	b.RawStrings = map[int][]byte{1: {0x03, 'f', 0x00, 'o', 0x00}}
	buf := b.Build()
	err := ReadDEX(nil, "classes.dex", bytes.NewReader(buf), uint64(len(buf)),
		&dexapktest.CaptureDexApkVisitOperations{})
	var sde *StringDecodeError
	require.True(t, errors.As(err, &sde), "got %v", err)
	require.Equal(t, EarlyTermination, sde.Reason)
	require.True(t, strings.HasPrefix(err.Error(), "reading dex classes.dex: string decode error"))
}

func TestHasDexMagic(t *testing.T) {
	require.True(t, HasDexMagic([]byte("dex\n035\x00rest")))
	require.True(t, HasDexMagic([]byte("dex\n039\x00")))
	require.False(t, HasDexMagic([]byte("dex\n035")))
	require.False(t, HasDexMagic([]byte("dey\n035\x00")))
	require.False(t, HasDexMagic([]byte("dex\n0a5\x00")))
	require.False(t, HasDexMagic([]byte("dex\n0351")))
}

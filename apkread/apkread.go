//
// Rudimentary package for examining Android APK files. An APK file
// is basically a ZIP file that contains an Android manifest and a series
// of DEX files, strings, resources, bitmaps, and assorted other items.
// This specific reader looks only at the DEX files, not the other
// bits and pieces (of which there are many). JAR, AAB and plain ZIP
// containers are handled the same way.
//
package apkread

import (
	"archive/zip"
	"fmt"
	"io"
	"regexp"

	"github.com/thanm/go-dex-query/dexapkvisit"
	"github.com/thanm/go-dex-query/dexread"
)

var isDex = regexp.MustCompile(`^\S+\.dex$`)

// ReadAPK opens the specified APK file 'apk' and walks the contents
// of any DEX files it contains, making callbacks at various
// points through a user-supplied visitor object 'visitor'. See
// DexApkVisitor for more info on which DEX/APK parts are visited.
func ReadAPK(apk string, visitor dexapkvisit.DexApkVisitor, opts ...dexread.Option) error {
	rc, err := zip.OpenReader(apk)
	if err != nil {
		return fmt.Errorf("unable to open APK %s: %w", apk, err)
	}
	defer rc.Close()
	z := &rc.Reader

	visitor.VisitAPK(apk)
	visitor.Verbose(1, "APK %s contains %d entries", apk, len(z.File))

	for i, zf := range z.File {
		entryName := zf.Name
		if !isDex.MatchString(entryName) {
			continue
		}
		visitor.Verbose(1, "dex file %s at entry %d", entryName, i)
		reader, err := zf.Open()
		if err != nil {
			return fmt.Errorf("opening apk %s dex %s: %w", apk, entryName, err)
		}
		err = dexread.ReadDEX(&apk, entryName, reader, zf.UncompressedSize64, visitor, opts...)
		reader.Close()
		if err != nil {
			return err
		}
	}
	return nil
}

// dexEntries returns the raw bytes of every DEX entry in z, in
// directory order.
func dexEntries(apk string, z *zip.Reader) ([]string, [][]byte, error) {
	var names []string
	var blobs [][]byte
	for _, zf := range z.File {
		if !isDex.MatchString(zf.Name) {
			continue
		}
		rd, err := zf.Open()
		if err != nil {
			return nil, nil, fmt.Errorf("opening apk %s dex %s: %w", apk, zf.Name, err)
		}
		b, err := io.ReadAll(rd)
		rd.Close()
		if err != nil {
			return nil, nil, fmt.Errorf("reading apk %s dex %s: %w", apk, zf.Name, err)
		}
		names = append(names, zf.Name)
		blobs = append(blobs, b)
	}
	return names, blobs, nil
}

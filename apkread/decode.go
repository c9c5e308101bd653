package apkread

import (
	"archive/zip"
	"fmt"
	"runtime"
	"strings"
	"sync"

	"go.uber.org/atomic"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/exp/mmap"

	"github.com/thanm/go-dex-query/dexread"
)

// Dex is one decoded DEX entry of a container.
type Dex struct {
	Name string
	File *dexread.DexFile
}

// Archive holds the decoded DEX entries of one container, in directory
// order.
type Archive struct {
	Path  string
	Dexes []Dex
	// BareDex is set when Path is a lone .dex file rather than a container.
	BareDex bool

	// totals over Dexes
	NumMethods int64
	NumClasses int64
	NumStrings int64
}

// DecodeOption is the property setter function for DecodeAPK.
type DecodeOption func(*decodeOptions)

type decodeOptions struct {
	workers int
	dexOpts []dexread.Option
	logger  *zap.Logger
}

// WithWorkers bounds the number of DEX entries decoded at once. Values
// below one mean runtime.GOMAXPROCS(0).
func WithWorkers(n int) DecodeOption {
	return func(o *decodeOptions) { o.workers = n }
}

// WithDexOptions passes options through to dexread.New.
func WithDexOptions(opts ...dexread.Option) DecodeOption {
	return func(o *decodeOptions) { o.dexOpts = append(o.dexOpts, opts...) }
}

func WithLogger(l *zap.Logger) DecodeOption {
	return func(o *decodeOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// DecodeAPK decodes every classesN.dex inside the container at path, or
// path itself when it names a bare .dex file. Each entry is decoded on
// its own goroutine; entries share nothing, so the result is the same
// as a sequential decode. Entries that fail are left out of the Archive
// and their errors are combined into the returned error.
func DecodeAPK(path string, opts ...DecodeOption) (*Archive, error) {
	o := decodeOptions{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}

	var names []string
	var blobs [][]byte
	bare := strings.HasSuffix(strings.ToLower(path), ".dex")
	if bare {
		b, err := mapFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading dex %s: %w", path, err)
		}
		names, blobs = []string{path}, [][]byte{b}
	} else {
		rc, err := zip.OpenReader(path)
		if err != nil {
			return nil, fmt.Errorf("unable to open APK %s: %w", path, err)
		}
		defer rc.Close()
		names, blobs, err = dexEntries(path, &rc.Reader)
		if err != nil {
			return nil, err
		}
	}
	o.logger.Debug("found dex entries", zap.String("path", path), zap.Int("count", len(names)))
	a, err := decodeBlobs(path, names, blobs, &o)
	a.BareDex = bare
	return a, err
}

// DecodeBlobs decodes already extracted DEX images, as DecodeAPK does
// for the entries it finds.
func DecodeBlobs(path string, names []string, blobs [][]byte, opts ...DecodeOption) (*Archive, error) {
	if len(names) != len(blobs) {
		return nil, fmt.Errorf("%s: %d dex names for %d blobs", path, len(names), len(blobs))
	}
	o := decodeOptions{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	return decodeBlobs(path, names, blobs, &o)
}

func decodeBlobs(path string, names []string, blobs [][]byte, o *decodeOptions) (*Archive, error) {
	workers := o.workers
	if workers < 1 {
		workers = runtime.GOMAXPROCS(0)
	}

	var (
		wg         sync.WaitGroup
		sem        = make(chan struct{}, workers)
		files      = make([]*dexread.DexFile, len(blobs))
		errs       = make([]error, len(blobs))
		numMethods = atomic.NewInt64(0)
		numClasses = atomic.NewInt64(0)
		numStrings = atomic.NewInt64(0)
	)
	for i := range blobs {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int) {
			defer func() {
				<-sem
				wg.Done()
			}()
			f, err := decodeOne(blobs[i], o.dexOpts)
			if err != nil {
				errs[i] = fmt.Errorf("reading apk %s dex %s: %w", path, names[i], err)
				o.logger.Warn("dex decode failed", zap.String("dex", names[i]), zap.Error(err))
				return
			}
			files[i] = f
			h := f.Header()
			numMethods.Add(int64(h.MethodIdsSize))
			numClasses.Add(int64(h.ClassDefsSize))
			numStrings.Add(int64(h.StringIdsSize))
			o.logger.Debug("decoded dex", zap.String("dex", names[i]),
				zap.Uint32("methods", h.MethodIdsSize), zap.Uint32("classes", h.ClassDefsSize))
		}(i)
	}
	wg.Wait()

	a := &Archive{
		Path:       path,
		NumMethods: numMethods.Load(),
		NumClasses: numClasses.Load(),
		NumStrings: numStrings.Load(),
	}
	for i, f := range files {
		if f != nil {
			a.Dexes = append(a.Dexes, Dex{Name: names[i], File: f})
		}
	}
	return a, multierr.Combine(errs...)
}

// decodeOne reports a bounds panic from a non-strict decode as an
// error for that entry alone.
func decodeOne(b []byte, opts []dexread.Option) (f *dexread.DexFile, err error) {
	if !dexread.HasDexMagic(b) {
		return nil, dexread.ErrNotDex
	}
	defer func() {
		if r := recover(); r != nil {
			f, err = nil, fmt.Errorf("malformed dex: %v", r)
		}
	}()
	return dexread.New(b, opts...)
}

func mapFile(path string) ([]byte, error) {
	r, err := mmap.Open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	b := make([]byte, r.Len())
	if _, err := r.ReadAt(b, 0); err != nil {
		return nil, err
	}
	return b, nil
}

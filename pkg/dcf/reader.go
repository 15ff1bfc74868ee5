package dcf

import (
	"fmt"
	"io"
	"os"

	json "github.com/goccy/go-json"

	"github.com/StefanSko/go-mcmc/pkg/ptree"
	"golang.org/x/sys/unix"
)

// File is an open DCF container. Section payloads are zero-copy slices into
// the mapping; they are invalid after Close.
type File struct {
	Data     []byte
	Header   *Header
	Sections []Section
	mmapped  bool
}

// Open maps a DCF file read-only and validates its structure. When mmap is
// unavailable it falls back to reading the file into memory. The returned
// file must be closed to release the mapping.
func Open(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	stat, err := f.Stat()
	if err != nil {
		return nil, err
	}
	size64 := stat.Size()
	if size64 < headerSize {
		return nil, ErrCorruptFile
	}
	if size64 > int64(int(^uint(0)>>1)) {
		return nil, ErrCorruptFile
	}
	size := int(size64)

	data, err := unix.Mmap(int(f.Fd()), 0, size, unix.PROT_READ, unix.MAP_SHARED)
	if err == nil {
		df, parseErr := parse(data, true)
		if parseErr != nil {
			_ = unix.Munmap(data)
			return nil, parseErr
		}
		return df, nil
	}

	data, err = readAllAt(f, size)
	if err != nil {
		return nil, err
	}
	return parse(data, false)
}

func readAllAt(r io.ReaderAt, size int) ([]byte, error) {
	out := make([]byte, size)
	var off int64
	for off < int64(size) {
		n, err := r.ReadAt(out[off:], off)
		off += int64(n)
		if err == nil {
			continue
		}
		if err == io.EOF && off == int64(size) {
			break
		}
		return nil, err
	}
	return out, nil
}

func parse(data []byte, mmapped bool) (*File, error) {
	hdr, ok := decodeHeader(data)
	if !ok {
		return nil, ErrCorruptFile
	}
	if !hdr.Valid() {
		return nil, ErrInvalidMagic
	}
	if !hdr.Compatible() {
		return nil, ErrUnsupportedMajor
	}
	if hdr.FileSize != uint64(len(data)) {
		return nil, ErrCorruptFile
	}

	dirStart := hdr.SectionDirOffset
	dirEnd := dirStart + uint64(hdr.SectionCount)*sectionSize
	if dirStart < uint64(hdr.HeaderSize) || dirEnd < dirStart || dirEnd > uint64(len(data)) {
		return nil, ErrCorruptFile
	}

	sections := make([]Section, hdr.SectionCount)
	for i := range sections {
		start := int(dirStart) + i*sectionSize
		sec, ok := decodeSection(data[start : start+sectionSize])
		if !ok {
			return nil, ErrCorruptFile
		}
		end := sec.Offset + sec.Size
		if end < sec.Offset || end > uint64(len(data)) {
			return nil, fmt.Errorf("%w: section %d out of bounds", ErrCorruptFile, i)
		}
		if sec.Offset < uint64(hdr.HeaderSize) {
			return nil, fmt.Errorf("%w: section %d overlaps header", ErrCorruptFile, i)
		}
		if sec.Offset%align != 0 {
			return nil, fmt.Errorf("%w: section %d misaligned", ErrCorruptFile, i)
		}
		sections[i] = sec
	}

	return &File{
		Data:     data,
		Header:   &hdr,
		Sections: sections,
		mmapped:  mmapped,
	}, nil
}

// Close releases the mapping. The file is unusable afterwards.
func (f *File) Close() error {
	if f == nil || f.Data == nil {
		return nil
	}
	var err error
	if f.mmapped {
		err = unix.Munmap(f.Data)
	}
	f.Data = nil
	f.Header = nil
	f.Sections = nil
	f.mmapped = false
	return err
}

// Section returns the first section of the given type, or nil.
func (f *File) Section(t SectionType) *Section {
	for i := range f.Sections {
		if SectionType(f.Sections[i].Type) == t {
			return &f.Sections[i]
		}
	}
	return nil
}

func (f *File) sectionData(t SectionType) ([]byte, error) {
	s := f.Section(t)
	if s == nil {
		return nil, fmt.Errorf("%w: type 0x%04x", ErrMissingSection, uint32(t))
	}
	return f.Data[s.Offset : s.Offset+s.Size], nil
}

// RunInfo decodes the run metadata section.
func (f *File) RunInfo() (RunInfo, error) {
	data, err := f.sectionData(SectionRunInfo)
	if err != nil {
		return RunInfo{}, err
	}
	var info RunInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return RunInfo{}, fmt.Errorf("%w: %v", ErrCorruptFile, err)
	}
	return info, nil
}

// Draws decodes the leaf index and draw data back into a parameter tree.
// The returned tree owns its buffers and stays valid after Close.
func (f *File) Draws() (*ptree.Tree, error) {
	indexData, err := f.sectionData(SectionLeafIndex)
	if err != nil {
		return nil, err
	}
	var index []LeafEntry
	if err := json.Unmarshal(indexData, &index); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptFile, err)
	}
	drawData, err := f.sectionData(SectionDrawData)
	if err != nil {
		return nil, err
	}
	return treeFromIndex(index, drawData)
}

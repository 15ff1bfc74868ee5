package dcf

import (
	"encoding/binary"
	"math"
	"os"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/StefanSko/go-mcmc/pkg/ptree"
)

// Write serializes a finished run into a DCF file at path. The draws tree is
// stored leaf by leaf in deterministic path order, so files written from the
// same run are byte-identical.
func Write(path string, info RunInfo, draws *ptree.Tree) error {
	infoJSON, err := json.Marshal(info)
	if err != nil {
		return err
	}

	var (
		index    []LeafEntry
		drawData []byte
	)
	draws.Walk(func(leafPath string, leaf *ptree.Tensor) {
		offset := uint64(len(drawData))
		buf := make([]byte, 4*len(leaf.Data))
		for i, v := range leaf.Data {
			binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(v))
		}
		drawData = append(drawData, buf...)
		index = append(index, LeafEntry{
			Path:   leafPath,
			Shape:  leaf.Shape,
			Offset: offset,
			Size:   uint64(len(buf)),
		})
	})
	indexJSON, err := json.Marshal(index)
	if err != nil {
		return err
	}

	payloads := [][]byte{infoJSON, indexJSON, drawData}
	types := []SectionType{SectionRunInfo, SectionLeafIndex, SectionDrawData}

	sections := make([]Section, len(payloads))
	offset := uint64(headerSize)
	var body []byte
	for i, p := range payloads {
		offset = alignUp(offset)
		for uint64(headerSize+len(body)) < offset {
			body = append(body, 0)
		}
		sections[i] = Section{
			Type:   uint32(types[i]),
			Offset: offset,
			Size:   uint64(len(p)),
		}
		body = append(body, p...)
		offset += uint64(len(p))
	}

	dirOffset := alignUp(offset)
	for uint64(headerSize+len(body)) < dirOffset {
		body = append(body, 0)
	}
	for _, s := range sections {
		body = append(body, encodeSection(s)...)
	}

	hdr := Header{
		Major:            CurrentMajor,
		Minor:            CurrentMinor,
		HeaderSize:       headerSize,
		SectionCount:     uint32(len(sections)),
		SectionDirOffset: dirOffset,
		FileSize:         uint64(headerSize + len(body)),
	}
	copy(hdr.Magic[:], MagicDCF)

	out := append(encodeHeader(&hdr), body...)
	return os.WriteFile(path, out, 0o644)
}

func alignUp(n uint64) uint64 {
	return (n + align - 1) &^ uint64(align-1)
}

// treeFromIndex rebuilds a parameter tree from a leaf index and the draw
// data payload.
func treeFromIndex(index []LeafEntry, data []byte) (*ptree.Tree, error) {
	root := &ptree.Tree{Children: map[string]*ptree.Tree{}}
	for _, e := range index {
		end := e.Offset + e.Size
		if end < e.Offset || end > uint64(len(data)) {
			return nil, ErrCorruptFile
		}
		n := 1
		for _, d := range e.Shape {
			if d < 0 {
				return nil, ErrCorruptFile
			}
			n *= d
		}
		if uint64(4*n) != e.Size {
			return nil, ErrCorruptFile
		}
		leaf := ptree.NewTensor(e.Shape...)
		raw := data[e.Offset:end]
		for i := range leaf.Data {
			leaf.Data[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[4*i:]))
		}
		if e.Path == "" {
			if len(index) != 1 {
				return nil, ErrCorruptFile
			}
			return ptree.FromTensor(leaf), nil
		}
		if err := insertLeaf(root, strings.Split(e.Path, "/"), leaf); err != nil {
			return nil, err
		}
	}
	return root, nil
}

func insertLeaf(node *ptree.Tree, path []string, leaf *ptree.Tensor) error {
	name := path[0]
	if len(path) == 1 {
		if _, exists := node.Children[name]; exists {
			return ErrCorruptFile
		}
		node.Children[name] = ptree.FromTensor(leaf)
		return nil
	}
	child, ok := node.Children[name]
	if !ok {
		child = &ptree.Tree{Children: map[string]*ptree.Tree{}}
		node.Children[name] = child
	}
	if child.IsLeaf() {
		return ErrCorruptFile
	}
	return insertLeaf(child, path[1:], leaf)
}

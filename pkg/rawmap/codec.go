package rawmap

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/kelindar/binary"
	"github.com/klauspost/compress/zstd"
)

const FileExt = ".bin"

var (
	ErrEmptyName = errors.New("raw map has no name")
)

// Encode serializes m without compression.
func Encode(m *Map) ([]byte, error) {
	bb, err := binary.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encode raw map %q: %w", m.Name, err)
	}
	return bb, nil
}

func Decode(bb []byte) (*Map, error) {
	var m Map
	if err := binary.Unmarshal(bb, &m); err != nil {
		return nil, fmt.Errorf("decode raw map: %w", err)
	}
	return &m, nil
}

// Write streams the zstd compressed encoding of m to w.
func Write(w io.Writer, m *Map) error {
	bb, err := Encode(m)
	if err != nil {
		return err
	}

	encoder, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
	if err != nil {
		return fmt.Errorf("failed to create zstd encoder: %w", err)
	}

	_, err = io.Copy(encoder, bytes.NewReader(bb))
	if err != nil {
		encoder.Close()
		return err
	}
	return encoder.Close()
}

func Read(r io.Reader) (*Map, error) {
	d, err := zstd.NewReader(r)
	if err != nil {
		return nil, err
	}
	defer d.Close()

	var out bytes.Buffer
	if _, err := io.Copy(&out, d); err != nil {
		return nil, fmt.Errorf("decompress raw map: %w", err)
	}
	return Decode(out.Bytes())
}

// Path is where a raw map named name lives inside dir.
func Path(dir, name string) string {
	return filepath.Join(dir, name+FileExt)
}

// WriteFile writes m to <dir>/<name>.bin, creating dir if needed, and returns the path.
func WriteFile(dir string, m *Map) (string, error) {
	if m.Name == "" {
		return "", ErrEmptyName
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	path := Path(dir, m.Name)
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if err := Write(w, m); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	if err := w.Flush(); err != nil {
		return "", err
	}
	return path, f.Sync()
}

func ReadFile(path string) (*Map, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	m, err := Read(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return m, nil
}

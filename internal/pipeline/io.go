package pipeline

import (
	"bufio"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
	"golang.org/x/crypto/blake2b"
)

// maxLine bounds a single input record.
const maxLine = 1 << 20

func compressed(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".zst")
}

// ReadLines reads every line of path without line terminators. Paths
// ending in .zst are decompressed.
func ReadLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var r io.Reader = f
	if compressed(path) {
		dec, err := zstd.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("opening zstd stream: %w", err)
		}
		defer dec.Close()
		r = dec
	}
	return scanLines(r)
}

func scanLines(r io.Reader) ([]string, error) {
	var lines []string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLine)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading lines: %w", err)
	}
	return lines, nil
}

// WriteFile writes the output of fn to path through a temporary file in
// the same directory and renames it into place, so a failed run leaves no
// partial output. Paths ending in .zst are compressed. It returns the
// hex blake2b-256 digest of the bytes stored on disk.
func WriteFile(path string, fn func(io.Writer) error) (digest string, err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return "", fmt.Errorf("creating temporary file: %w", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	h, err := blake2b.New256(nil)
	if err != nil {
		return "", err
	}
	out := io.MultiWriter(tmp, h)

	if compressed(path) {
		enc, err := zstd.NewWriter(out)
		if err != nil {
			return "", fmt.Errorf("opening zstd stream: %w", err)
		}
		if err := fn(enc); err != nil {
			enc.Close()
			return "", err
		}
		if err := enc.Close(); err != nil {
			return "", fmt.Errorf("closing zstd stream: %w", err)
		}
	} else if err := fn(out); err != nil {
		return "", err
	}

	if err := tmp.Sync(); err != nil {
		return "", fmt.Errorf("syncing %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("closing %s: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("renaming into %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Digest returns the hex blake2b-256 digest of a file.
func Digest(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	h, err := blake2b.New256(nil)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hashing %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

var errEmptyInput = errors.New("input has no lines")

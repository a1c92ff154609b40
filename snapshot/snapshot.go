package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/placewalk/placewalk/model"
)

// Compression selects the payload compression algorithm.
type Compression uint8

const (
	// CompressionNone stores the payload as-is.
	CompressionNone Compression = 0
	// CompressionLZ4 favors decode speed.
	CompressionLZ4 Compression = 1
	// CompressionZSTD favors size.
	CompressionZSTD Compression = 2
)

var snapshotMagic = [4]byte{'P', 'W', 'S', '0'}

const formatVersion = 1

// ErrBadMagic indicates data that is not a placewalk snapshot.
var ErrBadMagic = errors.New("invalid snapshot magic")

// ErrUnsupportedVersion indicates a snapshot written by a newer format.
type ErrUnsupportedVersion struct {
	Version uint8
}

func (e *ErrUnsupportedVersion) Error() string {
	return fmt.Sprintf("unsupported snapshot version: %d", e.Version)
}

// Save writes entries to w using the given compression.
func Save(w io.Writer, entries []model.Entry, c Compression) error {
	header := make([]byte, 0, 6)
	header = append(header, snapshotMagic[:]...)
	header = append(header, formatVersion, byte(c))
	if _, err := w.Write(header); err != nil {
		return fmt.Errorf("write snapshot header: %w", err)
	}

	payload, err := compressedWriter(w, c)
	if err != nil {
		return err
	}

	if err := json.NewEncoder(payload).Encode(entries); err != nil {
		payload.Close()
		return fmt.Errorf("encode snapshot payload: %w", err)
	}
	if err := payload.Close(); err != nil {
		return fmt.Errorf("flush snapshot payload: %w", err)
	}
	return nil
}

// Load reads a snapshot written by Save.
func Load(r io.Reader) ([]model.Entry, error) {
	var header [6]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, fmt.Errorf("read snapshot header: %w", err)
	}
	if [4]byte(header[:4]) != snapshotMagic {
		return nil, ErrBadMagic
	}
	if header[4] != formatVersion {
		return nil, &ErrUnsupportedVersion{Version: header[4]}
	}

	payload, err := compressedReader(r, Compression(header[5]))
	if err != nil {
		return nil, err
	}
	defer payload.Close()

	var entries []model.Entry
	if err := json.NewDecoder(payload).Decode(&entries); err != nil {
		return nil, fmt.Errorf("decode snapshot payload: %w", err)
	}
	return entries, nil
}

// nopWriteCloser adapts a plain writer to the closer-based flow.
type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

func compressedWriter(w io.Writer, c Compression) (io.WriteCloser, error) {
	switch c {
	case CompressionNone:
		return nopWriteCloser{w}, nil
	case CompressionLZ4:
		return lz4.NewWriter(w), nil
	case CompressionZSTD:
		enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			return nil, fmt.Errorf("init zstd writer: %w", err)
		}
		return enc, nil
	default:
		return nil, fmt.Errorf("unknown compression type: %d", c)
	}
}

type nopReadCloser struct{ io.Reader }

func (nopReadCloser) Close() error { return nil }

// zstdReadCloser adapts zstd.Decoder's Close (no error) to io.Closer.
type zstdReadCloser struct{ dec *zstd.Decoder }

func (z zstdReadCloser) Read(p []byte) (int, error) { return z.dec.Read(p) }

func (z zstdReadCloser) Close() error {
	z.dec.Close()
	return nil
}

func compressedReader(r io.Reader, c Compression) (io.ReadCloser, error) {
	switch c {
	case CompressionNone:
		return nopReadCloser{r}, nil
	case CompressionLZ4:
		return nopReadCloser{lz4.NewReader(r)}, nil
	case CompressionZSTD:
		dec, err := zstd.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("init zstd reader: %w", err)
		}
		return zstdReadCloser{dec: dec}, nil
	default:
		return nil, fmt.Errorf("unknown compression type: %d", c)
	}
}

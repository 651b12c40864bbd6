// Package book reads opening books: a file of 16-byte big-endian entries
// sorted by position key, looked up by binary search.
package book

import (
	"cmp"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/rs/zerolog/log"
	"lukechampine.com/frand"

	"github.com/hailam/sonic/internal/board"
)

// EntrySize is the on-disk size of one entry.
const EntrySize = 16

// Entry is one book record. Several entries may share a key, one per
// candidate move; Count weights the random pick.
type Entry struct {
	Key   uint64
	Move  uint16
	Count uint16
	N     uint16
	Sum   uint16
}

// ErrCorrupt is returned for books whose size is not a multiple of EntrySize.
var ErrCorrupt = errors.New("book: size is not a multiple of the entry size")

// Book is an opened opening book.
type Book struct {
	r      io.ReaderAt
	n      int64
	closer io.Closer
}

// Open opens the book file at path.
func Open(path string) (*Book, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("book: %w", err)
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("book: %w", err)
	}
	b, err := NewReader(f, fi.Size())
	if err != nil {
		f.Close()
		return nil, err
	}
	b.closer = f
	log.Debug().Str("path", path).Int64("entries", b.n).Msg("book opened")
	return b, nil
}

// NewReader reads a book of size bytes from r.
func NewReader(r io.ReaderAt, size int64) (*Book, error) {
	if size%EntrySize != 0 {
		return nil, ErrCorrupt
	}
	return &Book{r: r, n: size / EntrySize}, nil
}

// Close releases the underlying file, if any.
func (b *Book) Close() error {
	if b == nil || b.closer == nil {
		return nil
	}
	err := b.closer.Close()
	b.closer = nil
	b.n = 0
	return err
}

// Len returns the number of entries.
func (b *Book) Len() int64 {
	if b == nil {
		return 0
	}
	return b.n
}

func (b *Book) readEntry(i int64) (Entry, error) {
	var buf [EntrySize]byte
	if _, err := b.r.ReadAt(buf[:], i*EntrySize); err != nil {
		return Entry{}, fmt.Errorf("book: entry %d: %w", i, err)
	}
	return decodeEntry(buf[:]), nil
}

func decodeEntry(buf []byte) Entry {
	return Entry{
		Key:   binary.BigEndian.Uint64(buf[0:8]),
		Move:  binary.BigEndian.Uint16(buf[8:10]),
		Count: binary.BigEndian.Uint16(buf[10:12]),
		N:     binary.BigEndian.Uint16(buf[12:14]),
		Sum:   binary.BigEndian.Uint16(buf[14:16]),
	}
}

// findKey returns the index of the first entry with key, or b.n.
func (b *Book) findKey(key uint64) (int64, error) {
	lo, hi := int64(0), b.n
	for lo < hi {
		mid := lo + (hi-lo)/2
		e, err := b.readEntry(mid)
		if err != nil {
			return b.n, err
		}
		if e.Key < key {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	if lo < b.n {
		e, err := b.readEntry(lo)
		if err != nil {
			return b.n, err
		}
		if e.Key == key {
			return lo, nil
		}
	}
	return b.n, nil
}

// Lookup returns every entry stored for key, in file order.
func (b *Book) Lookup(key uint64) ([]Entry, error) {
	if b == nil || b.n == 0 {
		return nil, nil
	}
	i, err := b.findKey(key)
	if err != nil {
		return nil, err
	}
	var entries []Entry
	for ; i < b.n; i++ {
		e, err := b.readEntry(i)
		if err != nil {
			return entries, err
		}
		if e.Key != key {
			break
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// Probe picks a book move for pos, each candidate with probability
// proportional to its count. Entries with a zero count are never played.
func (b *Book) Probe(pos *board.Position) (board.Move, bool) {
	entries, err := b.Lookup(pos.Hash)
	if err != nil {
		log.Warn().Err(err).Msg("book lookup failed")
		return board.NoMove, false
	}

	best := board.NoMove
	total := 0
	for _, e := range entries {
		if e.Count == 0 {
			continue
		}
		// Reservoir pick: the i-th candidate replaces the choice with
		// probability count/total-so-far.
		total += int(e.Count)
		if frand.Intn(total) < int(e.Count) {
			best = DecodeMove(e.Move)
		}
	}
	return best, best != board.NoMove
}

// DecodeMove converts the packed book move: to-file in bits 0-2, to-rank
// 3-5, from-file 6-8, from-rank 9-11 and the promotion piece in 12-14
// (1 knight through 4 queen). Castling stored as king-takes-rook becomes
// the king's two-square move.
func DecodeMove(data uint16) board.Move {
	to := board.NewSquare(int(data&7), int(data>>3&7))
	from := board.NewSquare(int(data>>6&7), int(data>>9&7))

	switch {
	case from == board.E1 && to == board.H1:
		to = board.G1
	case from == board.E1 && to == board.A1:
		to = board.C1
	case from == board.E8 && to == board.H8:
		to = board.G8
	case from == board.E8 && to == board.A8:
		to = board.C8
	}

	if promo := data >> 12 & 7; promo >= 1 && promo <= 4 {
		return board.NewPromotion(from, to, promoTypes[promo])
	}
	return board.NewMove(from, to)
}

var promoTypes = [5]board.PieceType{0, board.Knight, board.Bishop, board.Rook, board.Queen}

// EncodeMove is the inverse of DecodeMove for non-castling moves; castling
// is written as the king's two-square move.
func EncodeMove(m board.Move) uint16 {
	from, to := m.From(), m.To()
	data := uint16(to.File()) | uint16(to.Rank())<<3 |
		uint16(from.File())<<6 | uint16(from.Rank())<<9
	if m.IsPromotion() {
		data |= uint16(slices.Index(promoTypes[:], m.Promotion())) << 12
	}
	return data
}

// Write sorts entries by key and writes them in book format. Entries with
// equal keys keep their relative order.
func Write(w io.Writer, entries []Entry) error {
	sorted := slices.Clone(entries)
	slices.SortStableFunc(sorted, func(a, b Entry) int {
		return cmp.Compare(a.Key, b.Key)
	})

	var buf [EntrySize]byte
	for _, e := range sorted {
		binary.BigEndian.PutUint64(buf[0:8], e.Key)
		binary.BigEndian.PutUint16(buf[8:10], e.Move)
		binary.BigEndian.PutUint16(buf[10:12], e.Count)
		binary.BigEndian.PutUint16(buf[12:14], e.N)
		binary.BigEndian.PutUint16(buf[14:16], e.Sum)
		if _, err := w.Write(buf[:]); err != nil {
			return fmt.Errorf("book: %w", err)
		}
	}
	return nil
}

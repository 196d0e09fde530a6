// Package testutil builds minimal media files for tests: little-endian TIFF
// blocks carrying EXIF and GPS tags, JPEG wrappers around them, and
// QuickTime containers with a movie header and an ISO 6709 location string.
package testutil

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TIFF field types.
const (
	typeASCII    = 2
	typeLong     = 4
	typeRational = 5
)

// Tag ids used by the fixtures.
const (
	tagGPSLatitudeRef   = 0x0001
	tagGPSLatitude      = 0x0002
	tagGPSLongitudeRef  = 0x0003
	tagGPSLongitude     = 0x0004
	tagModel            = 0x0110
	tagSoftware         = 0x0131
	tagDateTime         = 0x0132
	tagExifIFDPointer   = 0x8769
	tagGPSIFDPointer    = 0x8825
	tagDateTimeOriginal = 0x9003
)

// Rational is a numerator/denominator pair.
type Rational [2]uint32

// DMS is degrees, minutes and seconds as rationals.
type DMS [3]Rational

// Rationals returns d as a slice, for GPS blocks built field by field.
func (d DMS) Rationals() []Rational { return d[:] }

// Deg builds a DMS from whole numbers.
func Deg(d, m, s uint32) DMS {
	return DMS{{d, 1}, {m, 1}, {s, 1}}
}

// GPS describes the GPS sub-IFD. Empty refs are omitted. A nil Lat or Lon
// slice omits that tag.
type GPS struct {
	LatRef string
	Lat    []Rational
	LonRef string
	Lon    []Rational
}

// Exif describes the tags written into a TIFF block. Empty strings are
// omitted.
type Exif struct {
	Model            string
	Software         string
	DateTime         string
	DateTimeOriginal string
	GPS              *GPS
}

// GPSAt returns a GPS block for the given DMS values and refs.
func GPSAt(latRef string, lat DMS, lonRef string, lon DMS) *GPS {
	return &GPS{LatRef: latRef, Lat: lat.Rationals(), LonRef: lonRef, Lon: lon.Rationals()}
}

type entry struct {
	tag   uint16
	typ   uint16
	count uint32
	data  []byte
}

func ascii(tag uint16, s string) entry {
	b := append([]byte(s), 0)
	return entry{tag: tag, typ: typeASCII, count: uint32(len(b)), data: b}
}

func long(tag uint16, v uint32) entry {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, v)
	return entry{tag: tag, typ: typeLong, count: 1, data: b}
}

func rationals(tag uint16, vals []Rational) entry {
	b := make([]byte, 0, 8*len(vals))
	for _, r := range vals {
		b = binary.LittleEndian.AppendUint32(b, r[0])
		b = binary.LittleEndian.AppendUint32(b, r[1])
	}
	return entry{tag: tag, typ: typeRational, count: uint32(len(vals)), data: b}
}

func ifdSize(entries []entry) int {
	n := 2 + 12*len(entries) + 4
	for _, e := range entries {
		if len(e.data) > 4 {
			n += len(e.data) + len(e.data)%2
		}
	}
	return n
}

// encodeIFD lays out entries at absolute offset start, followed by their
// out-of-line values.
func encodeIFD(entries []entry, start int) []byte {
	sort.Slice(entries, func(i, j int) bool { return entries[i].tag < entries[j].tag })

	head := 2 + 12*len(entries) + 4
	buf := make([]byte, head)
	var extra []byte
	binary.LittleEndian.PutUint16(buf, uint16(len(entries)))
	for i, e := range entries {
		p := buf[2+12*i:]
		binary.LittleEndian.PutUint16(p[0:], e.tag)
		binary.LittleEndian.PutUint16(p[2:], e.typ)
		binary.LittleEndian.PutUint32(p[4:], e.count)
		if len(e.data) <= 4 {
			copy(p[8:12], e.data)
			continue
		}
		binary.LittleEndian.PutUint32(p[8:], uint32(start+head+len(extra)))
		extra = append(extra, e.data...)
		if len(extra)%2 == 1 {
			extra = append(extra, 0)
		}
	}
	return append(buf, extra...)
}

// TIFF encodes x as a little-endian TIFF block, the form EXIF takes inside a
// JPEG APP1 segment.
func TIFF(x Exif) []byte {
	var ifd0, exifIFD, gpsIFD []entry
	if x.Model != "" {
		ifd0 = append(ifd0, ascii(tagModel, x.Model))
	}
	if x.Software != "" {
		ifd0 = append(ifd0, ascii(tagSoftware, x.Software))
	}
	if x.DateTime != "" {
		ifd0 = append(ifd0, ascii(tagDateTime, x.DateTime))
	}
	if x.DateTimeOriginal != "" {
		exifIFD = append(exifIFD, ascii(tagDateTimeOriginal, x.DateTimeOriginal))
	}
	if g := x.GPS; g != nil {
		if g.LatRef != "" {
			gpsIFD = append(gpsIFD, ascii(tagGPSLatitudeRef, g.LatRef))
		}
		if g.Lat != nil {
			gpsIFD = append(gpsIFD, rationals(tagGPSLatitude, g.Lat))
		}
		if g.LonRef != "" {
			gpsIFD = append(gpsIFD, ascii(tagGPSLongitudeRef, g.LonRef))
		}
		if g.Lon != nil {
			gpsIFD = append(gpsIFD, rationals(tagGPSLongitude, g.Lon))
		}
	}

	// Pointer entries are inline, so IFD0's size is known before the
	// sub-IFD offsets are.
	if len(exifIFD) > 0 {
		ifd0 = append(ifd0, long(tagExifIFDPointer, 0))
	}
	if len(gpsIFD) > 0 {
		ifd0 = append(ifd0, long(tagGPSIFDPointer, 0))
	}
	off := 8 + ifdSize(ifd0)
	exifOff := off
	if len(exifIFD) > 0 {
		off += ifdSize(exifIFD)
	}
	gpsOff := off
	for i := range ifd0 {
		switch ifd0[i].tag {
		case tagExifIFDPointer:
			binary.LittleEndian.PutUint32(ifd0[i].data, uint32(exifOff))
		case tagGPSIFDPointer:
			binary.LittleEndian.PutUint32(ifd0[i].data, uint32(gpsOff))
		}
	}

	out := []byte{'I', 'I', 42, 0, 8, 0, 0, 0}
	out = append(out, encodeIFD(ifd0, 8)...)
	if len(exifIFD) > 0 {
		out = append(out, encodeIFD(exifIFD, exifOff)...)
	}
	if len(gpsIFD) > 0 {
		out = append(out, encodeIFD(gpsIFD, gpsOff)...)
	}
	return out
}

// JPEG wraps a TIFF block in a minimal JPEG with an EXIF APP1 segment.
func JPEG(tiff []byte) []byte {
	seg := append([]byte("Exif\x00\x00"), tiff...)
	out := []byte{0xFF, 0xD8, 0xFF, 0xE1}
	out = binary.BigEndian.AppendUint16(out, uint16(len(seg)+2))
	out = append(out, seg...)
	return append(out, 0xFF, 0xD9)
}

// QuickTime describes a minimal .mov container.
type QuickTime struct {
	Created  time.Time // zero writes a zero creation time
	Duration time.Duration
	Location string // ISO 6709, e.g. "+40.4461-079.9822+000.000/"; empty omits udta
	MdatSize int
}

// macEpochOffset is the number of seconds between 1904-01-01 and 1970-01-01.
const macEpochOffset = 2082844800

func box(typ []byte, payload ...[]byte) []byte {
	n := 8
	for _, p := range payload {
		n += len(p)
	}
	out := binary.BigEndian.AppendUint32(make([]byte, 0, n), uint32(n))
	out = append(out, typ...)
	for _, p := range payload {
		out = append(out, p...)
	}
	return out
}

func mvhd(created time.Time, d time.Duration) []byte {
	const timescale = 600
	var ctime uint32
	if !created.IsZero() {
		ctime = uint32(created.Unix() + macEpochOffset)
	}
	p := make([]byte, 0, 100)
	p = binary.BigEndian.AppendUint32(p, 0) // version 0, flags
	p = binary.BigEndian.AppendUint32(p, ctime)
	p = binary.BigEndian.AppendUint32(p, ctime)
	p = binary.BigEndian.AppendUint32(p, timescale)
	p = binary.BigEndian.AppendUint32(p, uint32(d.Seconds()*timescale))
	p = binary.BigEndian.AppendUint32(p, 0x00010000) // rate 1.0
	p = binary.BigEndian.AppendUint16(p, 0x0100)     // volume 1.0
	p = append(p, make([]byte, 10)...)
	for _, m := range []uint32{0x00010000, 0, 0, 0, 0x00010000, 0, 0, 0, 0x40000000} {
		p = binary.BigEndian.AppendUint32(p, m)
	}
	p = append(p, make([]byte, 24)...)
	p = binary.BigEndian.AppendUint32(p, 2) // next track id
	return box([]byte("mvhd"), p)
}

// MOV encodes q as ftyp, moov(mvhd, udta(©xyz)) and mdat boxes.
func MOV(q QuickTime) []byte {
	ftyp := box([]byte("ftyp"), []byte("qt  "), []byte{0, 0, 0, 0}, []byte("qt  "))

	moovChildren := [][]byte{mvhd(q.Created, q.Duration)}
	if q.Location != "" {
		xyz := binary.BigEndian.AppendUint16(nil, uint16(len(q.Location)))
		xyz = binary.BigEndian.AppendUint16(xyz, 0x15c7)
		xyz = append(xyz, q.Location...)
		moovChildren = append(moovChildren, box([]byte("udta"), box([]byte{0xA9, 'x', 'y', 'z'}, xyz)))
	}
	moov := box([]byte("moov"), moovChildren...)
	mdat := box([]byte("mdat"), make([]byte, q.MdatSize))

	out := append(ftyp, moov...)
	return append(out, mdat...)
}

// WriteFile writes data to dir/name, creating parent directories, and
// returns the path.
func WriteFile(t testing.TB, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

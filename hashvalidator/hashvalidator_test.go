package hashvalidator

import (
	"crypto/md5" //nolint:gosec
	"encoding/base64"
	"encoding/binary"
	"hash/crc32"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNullValidator(t *testing.T) {
	v := NewNull()
	v.Update([]byte("anything"))
	r := v.Finish("some-digest-that-would-otherwise-fail")
	assert.True(t, r.Matches())
	assert.Equal(t, "null", v.Name())
}

func TestMD5Validator(t *testing.T) {
	data := []byte("hello, resumable upload")
	sum := md5.Sum(data) //nolint:gosec
	want := base64.StdEncoding.EncodeToString(sum[:])

	v := NewMD5()
	v.Update(data[:5])
	v.Update(data[5:])
	r := v.Finish(want)
	require.True(t, r.Matches())
	assert.Equal(t, want, r.Computed)
	assert.Equal(t, "md5", v.Name())
}

func TestMD5Validator_Mismatch(t *testing.T) {
	v := NewMD5()
	v.Update([]byte("payload"))
	r := v.Finish("not-the-right-digest")
	assert.False(t, r.Matches())
}

func TestCRC32CValidator(t *testing.T) {
	data := []byte("hello, resumable upload")
	table := crc32.MakeTable(crc32.Castagnoli)
	sum := crc32.Checksum(data, table)
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], sum)
	want := base64.StdEncoding.EncodeToString(buf[:])

	v := NewCRC32C()
	v.Update(data[:10])
	v.Update(data[10:])
	r := v.Finish(want)
	require.True(t, r.Matches())
	assert.Equal(t, want, r.Computed)
	assert.Equal(t, "crc32c", v.Name())
}

func TestCompositeValidator_AllMatch(t *testing.T) {
	data := []byte("composite payload")

	md5Sum := md5.Sum(data) //nolint:gosec
	crcSum := crc32.Checksum(data, crc32.MakeTable(crc32.Castagnoli))
	var crcBuf [4]byte
	binary.BigEndian.PutUint32(crcBuf[:], crcSum)

	received := "crc32c=" + base64.StdEncoding.EncodeToString(crcBuf[:]) +
		",md5=" + base64.StdEncoding.EncodeToString(md5Sum[:])

	v := NewComposite(NewCRC32C(), NewMD5())
	v.Update(data)
	r := v.Finish(received)
	assert.True(t, r.Matches())
}

func TestCompositeValidator_OneMismatches(t *testing.T) {
	data := []byte("composite payload")
	crcSum := crc32.Checksum(data, crc32.MakeTable(crc32.Castagnoli))
	var crcBuf [4]byte
	binary.BigEndian.PutUint32(crcBuf[:], crcSum)

	received := "crc32c=" + base64.StdEncoding.EncodeToString(crcBuf[:]) + ",md5=bogus=="

	v := NewComposite(NewCRC32C(), NewMD5())
	v.Update(data)
	r := v.Finish(received)
	assert.False(t, r.Matches())
}

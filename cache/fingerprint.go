package cache

import (
	"bytes"
	"sort"

	"github.com/vmihailenco/msgpack/v5"
)

// fingerprint serializes a record into a canonical byte form so publish can
// decide whether a record's content actually changed. Fields are encoded in
// sorted order; references are tagged so "Hero:42" the string and a
// reference to Hero:42 never collide.
func fingerprint(r Record) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.GetEncoder()
	defer msgpack.PutEncoder(enc)
	enc.Reset(&buf)

	if err := encodeCanonical(enc, r); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodeCanonical(enc *msgpack.Encoder, v interface{}) error {
	switch v := v.(type) {
	case Record:
		return encodeCanonicalMap(enc, v)
	case DataDict:
		return encodeCanonicalMap(enc, v)
	case map[string]interface{}:
		return encodeCanonicalMap(enc, v)
	case Reference:
		if err := enc.EncodeString("$ref"); err != nil {
			return err
		}
		return enc.EncodeString(string(v.Key))
	case []interface{}:
		if err := enc.EncodeArrayLen(len(v)); err != nil {
			return err
		}
		for _, item := range v {
			if err := encodeCanonical(enc, item); err != nil {
				return err
			}
		}
		return nil
	default:
		return enc.Encode(v)
	}
}

func encodeCanonicalMap(enc *msgpack.Encoder, m map[string]interface{}) error {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	if err := enc.EncodeMapLen(len(m)); err != nil {
		return err
	}
	for _, k := range keys {
		if err := enc.EncodeString(k); err != nil {
			return err
		}
		if err := encodeCanonical(enc, m[k]); err != nil {
			return err
		}
	}
	return nil
}

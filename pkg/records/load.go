// Package records reads the JSON file listing replacement strings.
package records

import (
	"bytes"
	"ebpatch/pkg/patcher"
	"io"
	"os"
	"strconv"

	"github.com/hashicorp/go-multierror"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"golang.org/x/text/encoding"
	"golang.org/x/text/transform"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type document struct {
	Strings []entry `json:"strings"`
}

type entry struct {
	Text    jsoniter.RawMessage `json:"text"`
	Address jsoniter.RawMessage `json:"address"`
}

// LoadFile reads the records file at path, see Load.
func LoadFile(path, encodingName string) ([]patcher.StringRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "opening records file")
	}
	defer f.Close()

	recs, err := Load(f, encodingName)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	return recs, nil
}

// Load decodes a records document written in the named encoding. Texts are
// returned encoded the same way, ready to be written into the image. Every
// invalid entry is reported, not just the first.
func Load(r io.Reader, encodingName string) ([]patcher.StringRecord, error) {
	enc, err := Encoding(encodingName)
	if err != nil {
		return nil, err
	}

	data, err := io.ReadAll(transform.NewReader(r, enc.NewDecoder()))
	if err != nil {
		return nil, errors.Wrap(err, "decoding records file")
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(err, "invalid JSON")
	}
	if len(doc.Strings) == 0 {
		return nil, errors.New(`invalid JSON, could not find "strings" element`)
	}

	var (
		result  = make([]patcher.StringRecord, 0, len(doc.Strings))
		merr    *multierror.Error
		encoder = enc.NewEncoder()
	)
	for i, e := range doc.Strings {
		rec, err := parseEntry(e, encoder)
		if err != nil {
			merr = multierror.Append(merr, errors.Wrapf(err, "string %d", i))
			continue
		}
		result = append(result, rec)
	}
	if err := merr.ErrorOrNil(); err != nil {
		return nil, err
	}
	return result, nil
}

func parseEntry(e entry, encoder *encoding.Encoder) (patcher.StringRecord, error) {
	var rec patcher.StringRecord

	if !isNull(e.Text) {
		var text string
		if err := json.Unmarshal(e.Text, &text); err != nil {
			return rec, errors.New("text is not a string")
		}
		b, err := encoder.Bytes([]byte(text))
		if err != nil {
			return rec, errors.Wrap(err, "encoding text")
		}
		rec.Text = b
		rec.Display = text
	}

	addr, err := parseAddress(e.Address)
	if err != nil {
		return rec, err
	}
	rec.Address = addr
	return rec, nil
}

// parseAddress accepts a JSON string or a non-negative integer. Zero, like
// a missing or empty value, leaves the address implicit.
func parseAddress(raw jsoniter.RawMessage) (patcher.Address, error) {
	raw = bytes.TrimSpace(raw)
	if isNull(raw) {
		return patcher.Address{}, nil
	}

	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return patcher.Address{}, errors.Wrap(err, "invalid address")
		}
		return patcher.ParseAddress(s)
	}

	v, err := strconv.ParseUint(string(raw), 10, 64)
	if err != nil {
		return patcher.Address{}, errors.Errorf("invalid address %s", raw)
	}
	if v == 0 {
		return patcher.Address{}, nil
	}
	return patcher.ExplicitAddress(v), nil
}

func isNull(raw jsoniter.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) == 0 || bytes.Equal(raw, []byte("null"))
}

package reconcile

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"golang.org/x/text/unicode/norm"
)

// hashDomain separates attribute hashes from any other sha256 use.
// Bump the version suffix if the canonical form ever changes.
const hashDomain = "inventory/attributes/v1"

// ContentHash returns the hex sha256 of the canonical form of attrs.
// The canonical form is JSON with object keys sorted at every depth and strings
// NFC-normalized, so key order in the source never changes the hash.
func ContentHash(attrs map[string]any) (string, error) {
	canonical, err := MarshalCanonical(attrs)
	if err != nil {
		return "", err
	}

	h := sha256.New()
	h.Write([]byte(hashDomain))
	h.Write([]byte{0x00})
	h.Write(canonical)
	return hex.EncodeToString(h.Sum(nil)), nil
}

// MarshalCanonical serializes attrs into its canonical JSON form.
// A nil map and an empty map serialize identically.
func MarshalCanonical(attrs map[string]any) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeCanonical(&buf, normalizeValue(attrs)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeCanonical(buf *bytes.Buffer, v any) error {
	switch val := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		buf.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeScalar(buf, k); err != nil {
				return err
			}
			buf.WriteByte(':')
			if err := writeCanonical(buf, val[k]); err != nil {
				return fmt.Errorf("attribute %q: %w", k, err)
			}
		}
		buf.WriteByte('}')
		return nil
	case []any:
		buf.WriteByte('[')
		for i, elem := range val {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeCanonical(buf, elem); err != nil {
				return fmt.Errorf("[%d]: %w", i, err)
			}
		}
		buf.WriteByte(']')
		return nil
	default:
		return writeScalar(buf, val)
	}
}

func writeScalar(buf *bytes.Buffer, v any) error {
	var out bytes.Buffer
	enc := json.NewEncoder(&out)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("unsupported attribute value %T: %w", v, err)
	}
	// Encode terminates every value with a newline.
	buf.Write(bytes.TrimSuffix(out.Bytes(), []byte{'\n'}))
	return nil
}

// normalizeValue NFC-normalizes strings and folds typed maps and slices coming from
// YAML or JSON decoders into map[string]any and []any. Integers are rendered exactly;
// an integral float64 encodes to the same digits, so 1500 and 1500.0 still agree.
func normalizeValue(v any) any {
	switch val := v.(type) {
	case nil:
		return nil
	case string:
		return norm.NFC.String(val)
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, elem := range val {
			out[norm.NFC.String(k)] = normalizeValue(elem)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(val))
		for k, elem := range val {
			out[norm.NFC.String(fmt.Sprint(k))] = normalizeValue(elem)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, elem := range val {
			out[i] = normalizeValue(elem)
		}
		return out
	case []string:
		out := make([]any, len(val))
		for i, elem := range val {
			out[i] = norm.NFC.String(elem)
		}
		return out
	case int:
		return json.Number(strconv.FormatInt(int64(val), 10))
	case int64:
		return json.Number(strconv.FormatInt(val, 10))
	case int32:
		return json.Number(strconv.FormatInt(int64(val), 10))
	case uint:
		return json.Number(strconv.FormatUint(uint64(val), 10))
	case uint64:
		return json.Number(strconv.FormatUint(val, 10))
	case uint32:
		return json.Number(strconv.FormatUint(uint64(val), 10))
	case float32:
		return float64(val)
	default:
		return val
	}
}

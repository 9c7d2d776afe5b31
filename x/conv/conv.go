// Package conv formats numbers into caller buffers without fmt or strconv,
// for log lines built on the MCU.
package conv

// AppendUint appends the base-10 digits of n to dst.
func AppendUint(dst []byte, n uint64) []byte {
	var buf [20]byte
	i := len(buf)
	for {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
		if n == 0 {
			break
		}
	}
	return append(dst, buf[i:]...)
}

// Line joins a prefix and key/value pairs into "prefix k=v k=v".
// Values may be strings or integers.
func Line(prefix string, kv ...any) string {
	b := make([]byte, 0, 64)
	b = append(b, prefix...)
	for i := 0; i+1 < len(kv); i += 2 {
		k, _ := kv[i].(string)
		b = append(b, ' ')
		b = append(b, k...)
		b = append(b, '=')
		switch v := kv[i+1].(type) {
		case string:
			b = append(b, v...)
		case uint8:
			b = AppendUint(b, uint64(v))
		case uint16:
			b = AppendUint(b, uint64(v))
		case uint32:
			b = AppendUint(b, uint64(v))
		case uint64:
			b = AppendUint(b, v)
		case int:
			if v < 0 {
				b = append(b, '-')
				v = -v
			}
			b = AppendUint(b, uint64(v))
		default:
			b = append(b, '?')
		}
	}
	return string(b)
}

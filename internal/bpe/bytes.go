package bpe

// bytesToUnicode maps raw bytes to printable unicode runes so that BPE can
// treat arbitrary byte sequences as strings and still be reversible. This is
// the GPT-2 byte-level scheme: printable latin bytes map to themselves,
// everything else is shifted into the U+0100 block in byte order.
func bytesToUnicode() ([256]string, map[rune]byte) {
	var bs []int
	for i := int('!'); i <= int('~'); i++ {
		bs = append(bs, i)
	}
	for i := int('¡'); i <= int('¬'); i++ {
		bs = append(bs, i)
	}
	for i := int('®'); i <= int('ÿ'); i++ {
		bs = append(bs, i)
	}

	cs := make([]int, len(bs))
	copy(cs, bs)
	n := 0
	for b := 0; b < 256; b++ {
		found := false
		for _, v := range bs {
			if v == b {
				found = true
				break
			}
		}
		if !found {
			bs = append(bs, b)
			cs = append(cs, 256+n)
			n++
		}
	}

	var byteEncoder [256]string
	byteDecoder := make(map[rune]byte, len(bs))
	for i := 0; i < len(bs); i++ {
		b := byte(bs[i])
		r := rune(cs[i])
		byteEncoder[b] = string(r)
		byteDecoder[r] = b
	}
	return byteEncoder, byteDecoder
}

func splitRunes(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}

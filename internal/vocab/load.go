package vocab

import (
	"io"
	"os"

	"github.com/samcharles93/tokenbridge/pkg/tvf"
)

// Load reads a vocabulary from path, sniffing the format by magic: a TVF
// container or a HuggingFace tokenizer.json. configPath optionally points
// at a tokenizer_config.json and only applies to the HuggingFace form.
func Load(path, configPath string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	var magic [4]byte
	_, readErr := io.ReadFull(f, magic[:])
	_ = f.Close()
	if readErr == nil && string(magic[:]) == tvf.MagicTVF {
		return LoadTVF(path)
	}
	return LoadHF(path, configPath)
}

// ParseBytes decodes an in-memory vocabulary, sniffing the format by magic.
func ParseBytes(data []byte) (*Table, error) {
	if len(data) >= 4 && string(data[:4]) == tvf.MagicTVF {
		f, err := tvf.Parse(data)
		if err != nil {
			return nil, err
		}
		defer func() { _ = f.Close() }()
		return FromTVF(f)
	}
	return ParseHF(data, nil)
}

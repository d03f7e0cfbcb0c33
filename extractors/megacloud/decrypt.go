package megacloud

import (
	"encoding/base64"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"golang.org/x/exp/slices"
)

const (
	layers = 3

	// printable ASCII, space to tilde
	charsetStart = 32
	charsetSize  = 95

	keygenXOR   = 247
	keygenShift = 5
)

var errMalformed = errors.New("decrypted payload is malformed")

var charset = func() []byte {
	c := make([]byte, charsetSize)
	for i := range c {
		c[i] = byte(charsetStart + i)
	}

	return c
}()

// decrypt undoes the layered source encryption of the sources endpoint.
// The plaintext is prefixed with its length as four decimal digits.
func decrypt(src, clientKey, megacloudKey string) (string, error) {
	data, err := decodeBase64(src)
	if err != nil {
		return "", fmt.Errorf("decode sources: %w", err)
	}

	key := keygen(megacloudKey, clientKey)
	for layer := layers; layer > 0; layer-- {
		data = reverseLayer(data, key+strconv.Itoa(layer))
	}

	if len(data) < 4 {
		return "", errMalformed
	}

	n, err := strconv.Atoi(string(data[:4]))
	if err != nil || n < 0 || 4+n > len(data) {
		return "", errMalformed
	}

	return string(data[4 : 4+n]), nil
}

func decodeBase64(s string) ([]byte, error) {
	s = strings.Map(func(r rune) rune {
		switch r {
		case '=', '\n', '\r', ' ', '\t':
			return -1
		}

		return r
	}, s)

	return base64.RawStdEncoding.DecodeString(s)
}

// lcg is the linear congruential generator both the shift and the shuffle draw from.
type lcg uint64

func newLCG(key string) *lcg {
	var h uint64
	for i := 0; i < len(key); i++ {
		h = (h*31 + uint64(key[i])) & 0xffffffff
	}

	g := lcg(h)
	return &g
}

func (g *lcg) next(n int) int {
	*g = (*g*1103515245 + 12345) & 0x7fffffff
	return int(uint64(*g) % uint64(n))
}

func reverseLayer(data []byte, layerKey string) []byte {
	rand := newLCG(layerKey)

	shifted := make([]byte, len(data))
	for i, c := range data {
		if c < charsetStart || c >= charsetStart+charsetSize {
			shifted[i] = c
			continue
		}

		index := int(c) - charsetStart
		shifted[i] = charset[(index-rand.next(charsetSize)+charsetSize)%charsetSize]
	}

	transposed := columnar(shifted, layerKey)

	substitution := shuffle(charset, layerKey)
	reverse := make(map[byte]byte, len(substitution))
	for i, c := range substitution {
		reverse[c] = charset[i]
	}

	for i, c := range transposed {
		if r, ok := reverse[c]; ok {
			transposed[i] = r
		}
	}

	return transposed
}

// shuffle permutes chars with a Fisher-Yates shuffle seeded by key.
func shuffle(chars []byte, key string) []byte {
	rand := newLCG(key)

	out := slices.Clone(chars)
	for i := len(out) - 1; i > 0; i-- {
		j := rand.next(i + 1)
		out[i], out[j] = out[j], out[i]
	}

	return out
}

// columnar fills a grid column by column, in the order of the sorted key
// characters, and reads it back row by row. Unfilled cells are spaces.
func columnar(src []byte, key string) []byte {
	columns := len(key)
	if columns == 0 {
		return slices.Clone(src)
	}

	rows := (len(src) + columns - 1) / columns

	grid := make([]byte, rows*columns)
	for i := range grid {
		grid[i] = ' '
	}

	order := make([]int, columns)
	for i := range order {
		order[i] = i
	}

	slices.SortStableFunc(order, func(a, b int) int {
		return int(key[a]) - int(key[b])
	})

	next := 0
	for _, column := range order {
		for row := 0; row < rows && next < len(src); row++ {
			grid[row*columns+column] = src[next]
			next++
		}
	}

	return grid
}

// keygen derives the layer key from the published megacloud key and the page's client key.
func keygen(megacloudKey, clientKey string) string {
	temp := megacloudKey + clientKey
	if temp == "" {
		return ""
	}

	// h = c + 31h + (h << 7) - h, without overflow
	h := new(big.Int)
	factor := big.NewInt(158)
	for i := 0; i < len(temp); i++ {
		h.Mul(h, factor)
		h.Add(h, big.NewInt(int64(temp[i])))
	}

	hash := new(big.Int).Mod(h, new(big.Int).SetUint64(0x7fffffffffffffff)).Int64()

	xored := make([]byte, len(temp))
	for i := 0; i < len(temp); i++ {
		xored[i] = temp[i] ^ keygenXOR
	}

	pivot := int(hash%int64(len(xored))) + keygenShift
	if pivot >= len(xored) {
		pivot %= len(xored)
	}

	rotated := append(slices.Clone(xored[pivot:]), xored[:pivot]...)

	leaf := []byte(clientKey)
	slices.Reverse(leaf)

	interleaved := make([]byte, 0, len(rotated)+len(leaf))
	for i := 0; i < max(len(rotated), len(leaf)); i++ {
		if i < len(rotated) {
			interleaved = append(interleaved, rotated[i])
		}

		if i < len(leaf) {
			interleaved = append(interleaved, leaf[i])
		}
	}

	limit := min(96+int(hash%33), len(interleaved))
	interleaved = interleaved[:limit]

	for i, c := range interleaved {
		interleaved[i] = byte(int(c)%charsetSize + charsetStart)
	}

	return string(interleaved)
}

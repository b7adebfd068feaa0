// Package base58 implements the bitcoin-alphabet base58 codec used by Solana
// for addresses and transaction signatures.
package base58

import (
	"errors"
	"math/big"
)

const alphabet = "123456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz"

var decodeMap [256]int8

func init() {
	for i := range decodeMap {
		decodeMap[i] = -1
	}
	for i, c := range alphabet {
		decodeMap[c] = int8(i)
	}
}

var radix = big.NewInt(58)

func Encode(input []byte) string {
	if len(input) == 0 {
		return ""
	}
	zeros := 0
	for zeros < len(input) && input[zeros] == 0 {
		zeros++
	}
	num := new(big.Int).SetBytes(input)
	mod := new(big.Int)
	out := make([]byte, 0, len(input)*138/100+1)
	for num.Sign() > 0 {
		num.DivMod(num, radix, mod)
		out = append(out, alphabet[mod.Int64()])
	}
	for i := 0; i < zeros; i++ {
		out = append(out, alphabet[0])
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return string(out)
}

func Decode(input string) ([]byte, error) {
	if input == "" {
		return nil, nil
	}
	zeros := 0
	for zeros < len(input) && input[zeros] == alphabet[0] {
		zeros++
	}
	num := new(big.Int)
	for i := 0; i < len(input); i++ {
		v := decodeMap[input[i]]
		if v < 0 {
			return nil, errors.New("base58: invalid character")
		}
		num.Mul(num, radix)
		num.Add(num, big.NewInt(int64(v)))
	}
	raw := num.Bytes()
	out := make([]byte, zeros+len(raw))
	copy(out[zeros:], raw)
	return out, nil
}

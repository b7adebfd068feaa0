package solana

import (
	"bytes"
	"crypto/ed25519"
	"encoding/base64"
	"fmt"

	"talon/internal/pkg/base58"
)

// Wallet 持有交易签名用的 ed25519 密钥对。
type Wallet struct {
	priv    ed25519.PrivateKey
	address string
}

// NewWallet 解析 base58 编码的 64 字节 secret key（Solana 钱包导出格式）。
func NewWallet(secretBase58 string) (*Wallet, error) {
	raw, err := base58.Decode(secretBase58)
	if err != nil {
		return nil, fmt.Errorf("solana: invalid private key encoding: %w", err)
	}
	switch len(raw) {
	case ed25519.PrivateKeySize:
	case ed25519.SeedSize:
		raw = ed25519.NewKeyFromSeed(raw)
	default:
		return nil, fmt.Errorf("solana: private key must be %d or %d bytes, got %d",
			ed25519.SeedSize, ed25519.PrivateKeySize, len(raw))
	}
	priv := ed25519.PrivateKey(raw)
	pub := priv.Public().(ed25519.PublicKey)
	return &Wallet{priv: priv, address: base58.Encode(pub)}, nil
}

// Address 返回钱包公钥的 base58 地址。
func (w *Wallet) Address() string { return w.address }

// SignTransaction 对序列化交易（base64，签名位为占位）签名并回填首个签名槽。
// 同时适用于 legacy 与 v0 交易：消息体都紧跟在签名数组之后。
func (w *Wallet) SignTransaction(txB64 string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(txB64)
	if err != nil {
		return "", fmt.Errorf("solana: invalid transaction encoding: %w", err)
	}
	sigCount, offset, err := decodeShortU16(raw)
	if err != nil {
		return "", err
	}
	if sigCount < 1 {
		return "", fmt.Errorf("solana: transaction expects no signatures")
	}
	msgStart := offset + sigCount*ed25519.SignatureSize
	if len(raw) <= msgStart {
		return "", fmt.Errorf("solana: truncated transaction")
	}
	sig := ed25519.Sign(w.priv, raw[msgStart:])
	copy(raw[offset:offset+ed25519.SignatureSize], sig)
	return base64.StdEncoding.EncodeToString(raw), nil
}

// BuildCloseAccountTx 构造关闭 SPL 代币账户的 legacy 交易（租金退回钱包）并签名。
func (w *Wallet) BuildCloseAccountTx(tokenAccount, recentBlockhash string) (string, error) {
	ownerKey, err := base58.Decode(w.address)
	if err != nil {
		return "", err
	}
	accountKey, err := base58.Decode(tokenAccount)
	if err != nil {
		return "", fmt.Errorf("solana: invalid token account: %w", err)
	}
	programKey, err := base58.Decode(TokenProgramID)
	if err != nil {
		return "", err
	}
	blockhash, err := base58.Decode(recentBlockhash)
	if err != nil || len(blockhash) != 32 {
		return "", fmt.Errorf("solana: invalid blockhash %q", recentBlockhash)
	}

	// Legacy message：账户顺序固定为 [签名可写 owner, 可写 tokenAccount, 只读 program]。
	var msg bytes.Buffer
	msg.Write([]byte{1, 0, 1}) // header: 1 signer, 0 readonly signed, 1 readonly unsigned
	writeShortU16(&msg, 3)
	msg.Write(ownerKey)
	msg.Write(accountKey)
	msg.Write(programKey)
	msg.Write(blockhash)
	writeShortU16(&msg, 1) // one instruction
	msg.WriteByte(2)       // program index
	writeShortU16(&msg, 3)
	msg.Write([]byte{1, 0, 0}) // accounts: close target, rent destination, owner
	writeShortU16(&msg, 1)
	msg.WriteByte(9) // SPL Token CloseAccount

	sig := ed25519.Sign(w.priv, msg.Bytes())
	var tx bytes.Buffer
	writeShortU16(&tx, 1)
	tx.Write(sig)
	tx.Write(msg.Bytes())
	return base64.StdEncoding.EncodeToString(tx.Bytes()), nil
}

// decodeShortU16 解析 Solana 的 compact-u16 变长整数，返回值与消耗的字节数。
func decodeShortU16(raw []byte) (int, int, error) {
	value := 0
	for i := 0; i < 3 && i < len(raw); i++ {
		b := int(raw[i])
		value |= (b & 0x7f) << (7 * i)
		if b&0x80 == 0 {
			return value, i + 1, nil
		}
	}
	return 0, 0, fmt.Errorf("solana: malformed compact-u16")
}

func writeShortU16(buf *bytes.Buffer, value int) {
	for {
		b := byte(value & 0x7f)
		value >>= 7
		if value == 0 {
			buf.WriteByte(b)
			return
		}
		buf.WriteByte(b | 0x80)
	}
}

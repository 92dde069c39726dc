package dispatch

import (
	"encoding/base64"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

// Wallet is the read-only signing credential shared by every concurrent
// pipeline invocation.
type Wallet struct {
	prikey solana.PrivateKey
	pubkey solana.PublicKey
}

func NewWallet(base58Key string) (*Wallet, error) {
	prikey, err := solana.PrivateKeyFromBase58(base58Key)
	if err != nil {
		return nil, fmt.Errorf("import wallet: %w", err)
	}
	return &Wallet{prikey: prikey, pubkey: prikey.PublicKey()}, nil
}

// GenerateWallet makes a throwaway keypair for simulation runs without a
// configured key.
func GenerateWallet() *Wallet {
	prikey := solana.NewWallet().PrivateKey
	return &Wallet{prikey: prikey, pubkey: prikey.PublicKey()}
}

func (w *Wallet) PublicKey() solana.PublicKey {
	return w.pubkey
}

func (w *Wallet) PrivateKey() solana.PrivateKey {
	return w.prikey
}

// SignedTransaction decodes the aggregator's base64 payload and signs it.
// Each transmission attempt decodes and signs afresh, so a fallback send
// always leaves with exactly one fresh signature pass.
func (w *Wallet) SignedTransaction(swapB64 string) (*solana.Transaction, error) {
	raw, err := base64.StdEncoding.DecodeString(swapB64)
	if err != nil {
		return nil, fmt.Errorf("decode swap transaction: %w", err)
	}
	trx, err := solana.TransactionFromDecoder(bin.NewBinDecoder(raw))
	if err != nil {
		return nil, fmt.Errorf("deserialize swap transaction: %w", err)
	}
	_, err = trx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(w.pubkey) {
			return &w.prikey
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("sign swap transaction: %w", err)
	}
	return trx, nil
}

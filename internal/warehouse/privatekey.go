// Copyright (c) 2025 sfkit authors
// Licensed under the MIT License. See LICENSE file in the project root for details.

package warehouse

import (
	"bytes"
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"errors"
	"fmt"
	"strings"

	"github.com/youmark/pkcs8"
	"golang.org/x/crypto/ssh"
)

func wipeSlice(b []byte) {
	for i := range b {
		b[i] = '~'
	}
}

// NormalizeKeyText turns literal "\n" sequences, as found in environment variables
// and secret stores, back into newlines.
func NormalizeKeyText(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, `\n`, "\n"))
}

// PEM block types of PKCS#8 private keys.
const (
	pemPrivateKey          = "PRIVATE KEY"
	pemEncryptedPrivateKey = "ENCRYPTED PRIVATE KEY"
)

// ParsePrivateKey decodes a technical account key and returns it with its
// unencrypted PKCS#8 DER encoding. Accepted forms: any PEM key ssh can read
// (PKCS#1, PKCS#8, OpenSSH), encrypted PKCS#8 PEM with a passphrase, and bare
// base64 DER as issued by Snowflake key-pair setup.
func ParsePrivateKey(text, passphrase string) (*rsa.PrivateKey, []byte, error) {
	raw := []byte(NormalizeKeyText(text))
	defer wipeSlice(raw)
	if len(raw) == 0 {
		return nil, nil, errors.New("private key is empty")
	}

	block, err := keyBlock(raw, passphrase != "")
	if err != nil {
		return nil, nil, err
	}
	defer wipeSlice(block.Bytes)

	key, err := decodeKey(block, passphrase)
	if err != nil {
		return nil, nil, err
	}
	rsaKey, ok := key.(*rsa.PrivateKey)
	if !ok {
		return nil, nil, fmt.Errorf("technical account keys must be RSA, got %T", key)
	}
	der, err := x509.MarshalPKCS8PrivateKey(rsaKey)
	if err != nil {
		return nil, nil, fmt.Errorf("encode private key as PKCS#8: %w", err)
	}
	return rsaKey, der, nil
}

// keyBlock extracts the key's PEM block. Text without PEM armour is read as
// base64 DER, assumed encrypted when a passphrase was given.
func keyBlock(raw []byte, encrypted bool) (*pem.Block, error) {
	if block, _ := pem.Decode(raw); block != nil {
		return block, nil
	}
	der, err := base64.StdEncoding.DecodeString(string(bytes.Join(bytes.Fields(raw), nil)))
	if err != nil {
		return nil, errors.New("private key is neither PEM nor base64 DER")
	}
	block := &pem.Block{Type: pemPrivateKey, Bytes: der}
	if encrypted {
		block.Type = pemEncryptedPrivateKey
	}
	return block, nil
}

func decodeKey(block *pem.Block, passphrase string) (any, error) {
	if block.Type == pemEncryptedPrivateKey {
		if passphrase == "" {
			return nil, errors.New("encrypted private key needs a passphrase")
		}
		key, err := pkcs8.ParsePKCS8PrivateKey(block.Bytes, []byte(passphrase))
		if err != nil {
			return nil, fmt.Errorf("decrypt private key: %w", err)
		}
		return key, nil
	}
	armoured := pem.EncodeToMemory(block)
	defer wipeSlice(armoured)
	key, err := ssh.ParseRawPrivateKey(armoured)
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}
	return key, nil
}

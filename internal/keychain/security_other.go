// Copyright (c) 2025 sfkit authors
// Licensed under the MIT License. See LICENSE file in the project root for details.

//go:build !darwin

package keychain

import "errors"

var errNoSecurityCommand = errors.New("keychain: the security command backend is macOS only")

// securityBackend is never constructed off macOS; the keyring library serves
// Windows Credential Manager and the Linux secret stores instead.
type securityBackend struct{}

func newSecurityBackend() (*securityBackend, error) { return nil, errNoSecurityCommand }

func (*securityBackend) Set(string, string) error   { return errNoSecurityCommand }
func (*securityBackend) Get(string) (string, error) { return "", errNoSecurityCommand }
func (*securityBackend) Delete(string) error        { return errNoSecurityCommand }

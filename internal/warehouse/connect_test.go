// Copyright (c) 2025 sfkit authors
// Licensed under the MIT License. See LICENSE file in the project root for details.

package warehouse

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"database/sql"
	"encoding/base64"
	"encoding/pem"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	sferrors "sfkit/cli/internal/errors"

	"github.com/snowflakedb/gosnowflake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/youmark/pkcs8"
)

// fakeOpener records the driver configuration and hands back a local SQLite database.
type fakeOpener struct {
	t   *testing.T
	cfg *gosnowflake.Config
	err error
}

func (f *fakeOpener) open(cfg *gosnowflake.Config) (*sql.DB, error) {
	f.cfg = cfg
	if f.err != nil {
		return nil, f.err
	}
	return sql.Open("sqlite", filepath.Join(f.t.TempDir(), "sf.db"))
}

func testKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return key
}

func pemPKCS8(t *testing.T, key any) string {
	t.Helper()
	der, err := x509.MarshalPKCS8PrivateKey(key)
	require.NoError(t, err)
	return string(pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der}))
}

func TestConnectUserDefaults(t *testing.T) {
	fo := &fakeOpener{t: t}
	c := New(WithSnowflakeOpener(fo.open))
	t.Cleanup(c.Disconnect)

	require.NoError(t, c.ConnectUser(context.Background(), UserCredentials{User: "jdoe@example.com"}))
	assert.True(t, c.Connected())
	assert.Equal(t, "snowflake", c.Dialect().Name())
	assert.Equal(t, DefaultAccount, fo.cfg.Account)
	assert.Equal(t, "jdoe@example.com", fo.cfg.User)
	assert.Equal(t, gosnowflake.AuthTypeExternalBrowser, fo.cfg.Authenticator)
}

func TestConnectUserRequiresUser(t *testing.T) {
	fo := &fakeOpener{t: t}
	c := New(WithSnowflakeOpener(fo.open))

	err := c.ConnectUser(context.Background(), UserCredentials{User: " "})
	assert.True(t, sferrors.IsKind(err, sferrors.InvalidArgument))
	assert.Nil(t, fo.cfg)
}

func TestConnectUserFailureLeavesSessionUnset(t *testing.T) {
	fo := &fakeOpener{t: t, err: errors.New("sso cancelled")}
	c := New(WithSnowflakeOpener(fo.open))

	err := c.ConnectUser(context.Background(), UserCredentials{User: "jdoe", Account: "acme"})
	assert.True(t, sferrors.IsKind(err, sferrors.ConnectFailed))
	assert.ErrorContains(t, err, "sso cancelled")
	assert.False(t, c.Connected())
	assert.Equal(t, "acme", fo.cfg.Account)
}

func TestConnectUserReplacesPreviousSession(t *testing.T) {
	ctx := context.Background()
	fo := &fakeOpener{t: t}
	c := New(WithSnowflakeOpener(fo.open))
	t.Cleanup(c.Disconnect)

	require.NoError(t, c.ConnectUser(ctx, UserCredentials{User: "a"}))
	first := c.conn
	require.NoError(t, c.ConnectUser(ctx, UserCredentials{User: "b"}))
	assert.NotSame(t, first, c.conn)
	assert.Equal(t, "user b", c.who)
}

func TestConnectTechUsesKeyPair(t *testing.T) {
	key := testKey(t)
	escaped := strings.ReplaceAll(pemPKCS8(t, key), "\n", `\n`)

	fo := &fakeOpener{t: t}
	c := New(WithSnowflakeOpener(fo.open))
	t.Cleanup(c.Disconnect)

	require.NoError(t, c.ConnectTech(context.Background(), TechCredentials{Login: "svc_etl", PrivateKey: escaped}))
	assert.Equal(t, gosnowflake.AuthTypeJwt, fo.cfg.Authenticator)
	assert.Equal(t, "svc_etl", fo.cfg.User)
	require.NotNil(t, fo.cfg.PrivateKey)
	assert.True(t, key.Equal(fo.cfg.PrivateKey))
}

func TestConnectTechValidation(t *testing.T) {
	fo := &fakeOpener{t: t}
	c := New(WithSnowflakeOpener(fo.open))

	err := c.ConnectTech(context.Background(), TechCredentials{Login: "svc"})
	assert.True(t, sferrors.IsKind(err, sferrors.InvalidArgument))

	err = c.ConnectTech(context.Background(), TechCredentials{Login: "svc", PrivateKey: "not a key"})
	assert.True(t, sferrors.IsKind(err, sferrors.ConnectFailed))
	assert.Nil(t, fo.cfg)
}

func TestApplyAuthenticator(t *testing.T) {
	tests := []struct {
		kind    string
		want    gosnowflake.AuthType
		wantErr bool
	}{
		{kind: "", want: gosnowflake.AuthTypeExternalBrowser},
		{kind: "ExternalBrowser", want: gosnowflake.AuthTypeExternalBrowser},
		{kind: "snowflake", want: gosnowflake.AuthTypeSnowflake},
		{kind: "oauth", want: gosnowflake.AuthTypeOAuth},
		{kind: "snowflake_jwt", want: gosnowflake.AuthTypeJwt},
		{kind: "username_password_mfa", want: gosnowflake.AuthTypeUsernamePasswordMFA},
		{kind: "https://acme.okta.com", want: gosnowflake.AuthTypeOkta},
		{kind: "http://acme.okta.com", wantErr: true},
		{kind: "kerberos", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			cfg := &gosnowflake.Config{}
			err := applyAuthenticator(cfg, tt.kind)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.Authenticator)
		})
	}
}

func TestParsePrivateKeyFormats(t *testing.T) {
	key := testKey(t)
	der, err := x509.MarshalPKCS8PrivateKey(key)
	require.NoError(t, err)

	t.Run("pem", func(t *testing.T) {
		got, out, err := ParsePrivateKey(pemPKCS8(t, key), "")
		require.NoError(t, err)
		assert.True(t, key.Equal(got))
		assert.Equal(t, der, out)
	})

	t.Run("pkcs1 pem", func(t *testing.T) {
		text := string(pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)}))
		got, _, err := ParsePrivateKey(text, "")
		require.NoError(t, err)
		assert.True(t, key.Equal(got))
	})

	t.Run("bare base64", func(t *testing.T) {
		got, _, err := ParsePrivateKey(base64.StdEncoding.EncodeToString(der), "")
		require.NoError(t, err)
		assert.True(t, key.Equal(got))
	})

	t.Run("wrapped base64", func(t *testing.T) {
		b64 := base64.StdEncoding.EncodeToString(der)
		var wrapped strings.Builder
		for len(b64) > 64 {
			wrapped.WriteString(b64[:64] + `\n`)
			b64 = b64[64:]
		}
		wrapped.WriteString(b64)
		got, _, err := ParsePrivateKey(wrapped.String(), "")
		require.NoError(t, err)
		assert.True(t, key.Equal(got))
	})

	t.Run("encrypted base64", func(t *testing.T) {
		enc, err := pkcs8.MarshalPrivateKey(key, []byte("s3cret"), nil)
		require.NoError(t, err)
		got, _, err := ParsePrivateKey(base64.StdEncoding.EncodeToString(enc), "s3cret")
		require.NoError(t, err)
		assert.True(t, key.Equal(got))
	})

	t.Run("garbage", func(t *testing.T) {
		_, _, err := ParsePrivateKey("not a key!", "")
		assert.ErrorContains(t, err, "neither PEM nor base64")
	})

	t.Run("encrypted", func(t *testing.T) {
		enc, err := pkcs8.MarshalPrivateKey(key, []byte("s3cret"), nil)
		require.NoError(t, err)
		text := string(pem.EncodeToMemory(&pem.Block{Type: "ENCRYPTED PRIVATE KEY", Bytes: enc}))

		_, _, err = ParsePrivateKey(text, "")
		assert.ErrorContains(t, err, "passphrase")

		got, _, err := ParsePrivateKey(text, "s3cret")
		require.NoError(t, err)
		assert.True(t, key.Equal(got))
	})

	t.Run("not rsa", func(t *testing.T) {
		_, edKey, err := ed25519.GenerateKey(rand.Reader)
		require.NoError(t, err)
		_, _, err = ParsePrivateKey(pemPKCS8(t, edKey), "")
		assert.ErrorContains(t, err, "RSA")
	})

	t.Run("empty", func(t *testing.T) {
		_, _, err := ParsePrivateKey(`  \n `, "")
		assert.Error(t, err)
	})
}

func TestTargetString(t *testing.T) {
	assert.Equal(t, "DB.SCH.T", Target{Database: "DB", Schema: "SCH", Table: "T"}.String())
	assert.Equal(t, "SCH.T", Target{Schema: "SCH", Table: "T"}.String())
	assert.Equal(t, "T", Target{Table: "T"}.String())
}

func TestDialectStatements(t *testing.T) {
	tgt := Target{Database: "DB", Schema: "SCH", Table: "T"}

	sf := Snowflake{}
	assert.Equal(t, []string{"USE DATABASE DB", "USE SCHEMA SCH"}, sf.UseStatements(tgt))
	assert.Equal(t, []string{"CREATE OR REPLACE TEMPORARY TABLE DB.SCH.T AS (SELECT 1)"}, sf.CreateTempTable(tgt, "SELECT 1"))

	pg := Postgres{}
	assert.Equal(t, "SCH.T", pg.Qualify(tgt))
	assert.Empty(t, pg.UseStatements(tgt))

	lite := SQLite{}
	assert.Equal(t, "T", lite.Qualify(tgt))
	assert.Equal(t, "temp.T", lite.Qualify(Target{Schema: "temp", Table: "T"}))

	for _, name := range []string{"snowflake", "postgres", "sqlite"} {
		d, err := DialectByName(name)
		require.NoError(t, err)
		assert.NotNil(t, d)
	}
	_, err := DialectByName("oracle")
	assert.Error(t, err)
}

package main

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"strings"

	"github.com/vyrodovalexey/jwkset/internal/config"
	"github.com/vyrodovalexey/jwkset/internal/jwk"
	"github.com/vyrodovalexey/jwkset/internal/keygen"
	"github.com/vyrodovalexey/jwkset/internal/keystore"
	"github.com/vyrodovalexey/jwkset/internal/observability"
)

// app holds the state shared by all commands.
type app struct {
	cfg    *config.Config
	flags  cliFlags
	logger observability.Logger
	stdin  io.Reader
	stdout io.Writer
}

// loadStore loads the configured key set into a new store.
func (a *app) loadStore(ctx context.Context, opts ...keystore.Option) (*keystore.Store, error) {
	store := keystore.NewStore(append([]keystore.Option{keystore.WithLogger(a.logger)}, opts...)...)
	if _, err := store.LoadFile(ctx, a.cfg.KeySet.Path); err != nil {
		return nil, err
	}
	return store, nil
}

// inspect prints the key IDs and algorithms of the key set.
func (a *app) inspect(ctx context.Context) error {
	store, err := a.loadStore(ctx)
	if err != nil {
		return err
	}
	set := store.Current()

	fmt.Fprintf(a.stdout, "signers (%d):\n", set.NumSigners())
	for _, kid := range set.SignerKeyIDs() {
		signer, _ := set.FindSigner(kid)
		fmt.Fprintf(a.stdout, "  %s\t%s\n", kid, signer.Algorithm())
	}

	fmt.Fprintf(a.stdout, "verifiers (%d):\n", set.NumVerifiers())
	for _, kid := range set.VerifierKeyIDs() {
		verifier, _ := set.FindVerifier(kid)
		fmt.Fprintf(a.stdout, "  %s\t%s\n", kid, verifier.Algorithm())
	}

	return nil
}

// sign signs stdin with the signer named by -kid.
func (a *app) sign(ctx context.Context) error {
	if a.flags.kid == "" {
		return fmt.Errorf("%w: sign requires -kid", errUsage)
	}

	store, err := a.loadStore(ctx)
	if err != nil {
		return err
	}

	signer, err := store.FindSigner(a.flags.kid)
	if err != nil {
		return err
	}

	message, err := io.ReadAll(a.stdin)
	if err != nil {
		return fmt.Errorf("failed to read message: %w", err)
	}

	signature, err := signer.Sign(message)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(a.stdout, base64.RawURLEncoding.EncodeToString(signature))
	return err
}

// verify checks -sig against stdin with the verifier named by -kid.
func (a *app) verify(ctx context.Context) error {
	if a.flags.kid == "" || a.flags.sig == "" {
		return fmt.Errorf("%w: verify requires -kid and -sig", errUsage)
	}

	signature, err := base64.RawURLEncoding.DecodeString(strings.TrimSpace(a.flags.sig))
	if err != nil {
		return fmt.Errorf("%w: invalid base64url: %w", jwk.ErrMalformedSignature, err)
	}

	store, err := a.loadStore(ctx)
	if err != nil {
		return err
	}

	verifier, err := store.FindVerifier(a.flags.kid)
	if err != nil {
		return err
	}

	message, err := io.ReadAll(a.stdin)
	if err != nil {
		return fmt.Errorf("failed to read message: %w", err)
	}

	if err := verifier.Verify(message, signature); err != nil {
		return err
	}

	_, err = fmt.Fprintln(a.stdout, "signature valid")
	return err
}

// generate prints a JWK set holding a new private key and its public key.
func (a *app) generate() error {
	pair, err := keygen.Generate(keygen.Options{
		KeyID:     a.flags.kid,
		Bits:      a.flags.bits,
		Algorithm: a.flags.alg,
	})
	if err != nil {
		return err
	}

	a.logger.Info("generated key pair",
		observability.String("kid", pair.KeyID),
		observability.String("alg", pair.Algorithm),
		observability.Int("bits", pair.PrivateKey.N.BitLen()),
	)

	_, err = fmt.Fprintln(a.stdout, string(pair.CombinedJWKS))
	return err
}

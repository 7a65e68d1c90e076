package auth

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Subject describes who a token is minted for.
type Subject struct {
	UserID        string
	InstitutionID string
	BorrowerID    string
	Roles         []string
}

// JWTConfig holds JWT configuration.
type JWTConfig struct {
	// Secret is an HMAC-SHA256 key, used only when no RSA key is set.
	Secret string

	// PrivateKeyPEM enables issuing; the public half is derived from it.
	PrivateKeyPEM string

	// PublicKeyPEM enables validation only.
	PublicKeyPEM string

	Issuer     string
	Expiration time.Duration
}

// DefaultExpiration applies when JWTConfig.Expiration is zero.
const DefaultExpiration = 15 * time.Minute

// ErrNoPrincipal rejects tokens that name neither an institution nor a
// borrower.
var ErrNoPrincipal = errors.New("token does not identify an institution or a borrower")

// JWTService handles JWT token operations.
type JWTService struct {
	config     JWTConfig
	privateKey *rsa.PrivateKey
	publicKey  *rsa.PublicKey
	useRSA     bool
}

// NewJWTService picks RS256 when a PEM key is configured and HS256 otherwise.
func NewJWTService(cfg JWTConfig) (*JWTService, error) {
	if cfg.Expiration == 0 {
		cfg.Expiration = DefaultExpiration
	}
	svc := &JWTService{config: cfg}

	switch {
	case cfg.PrivateKeyPEM != "":
		privKey, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(cfg.PrivateKeyPEM))
		if err != nil {
			return nil, fmt.Errorf("failed to parse RSA private key: %w", err)
		}
		svc.privateKey = privKey
		svc.publicKey = &privKey.PublicKey
		svc.useRSA = true

	case cfg.PublicKeyPEM != "":
		pubKey, err := jwt.ParseRSAPublicKeyFromPEM([]byte(cfg.PublicKeyPEM))
		if err != nil {
			return nil, fmt.Errorf("failed to parse RSA public key: %w", err)
		}
		svc.publicKey = pubKey
		svc.useRSA = true

	case cfg.Secret != "":
		svc.useRSA = false

	default:
		return nil, fmt.Errorf("jwt configuration requires PrivateKeyPEM, PublicKeyPEM, or Secret")
	}

	return svc, nil
}

// GenerateToken signs a token for sub. The subject must name a user and
// either an institution or a borrower.
func (s *JWTService) GenerateToken(sub Subject) (string, error) {
	if sub.UserID == "" || (sub.InstitutionID == "" && sub.BorrowerID == "") {
		return "", ErrNoPrincipal
	}

	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.config.Issuer,
			Subject:   sub.UserID,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.config.Expiration)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ID:        uuid.New().String(),
		},
		UserID:        sub.UserID,
		InstitutionID: sub.InstitutionID,
		BorrowerID:    sub.BorrowerID,
		Roles:         sub.Roles,
	}

	var (
		method jwt.SigningMethod = jwt.SigningMethodHS256
		key    interface{}       = []byte(s.config.Secret)
	)
	if s.useRSA {
		if s.privateKey == nil {
			return "", fmt.Errorf("cannot generate token: no private key configured (validation-only mode)")
		}
		method, key = jwt.SigningMethodRS256, s.privateKey
	}

	signed, err := jwt.NewWithClaims(method, claims).SignedString(key)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken parses tokenString and checks its signature, expiry,
// issuer and principal.
func (s *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithExpirationRequired(),
		jwt.WithValidMethods([]string{s.signingAlg()}),
	}
	if s.config.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.config.Issuer))
	}

	claims := &Claims{}
	if _, err := jwt.ParseWithClaims(tokenString, claims, s.verificationKey, opts...); err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}
	if claims.UserID == "" || (claims.InstitutionID == "" && claims.BorrowerID == "") {
		return nil, ErrNoPrincipal
	}
	return claims, nil
}

func (s *JWTService) signingAlg() string {
	if s.useRSA {
		return jwt.SigningMethodRS256.Alg()
	}
	return jwt.SigningMethodHS256.Alg()
}

func (s *JWTService) verificationKey(*jwt.Token) (interface{}, error) {
	if s.useRSA {
		return s.publicKey, nil
	}
	return []byte(s.config.Secret), nil
}

// LoadKeyFromFile reads a PEM-encoded key from a file path.
func LoadKeyFromFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read key file %q: %w", path, err)
	}
	return data, nil
}

// GenerateKeyPair returns a PEM-encoded 2048-bit RSA key pair.
func GenerateKeyPair() (privateKeyPEM, publicKeyPEM []byte, err error) {
	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to generate RSA key: %w", err)
	}

	privBytes := x509.MarshalPKCS1PrivateKey(privateKey)
	privPEM := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: privBytes,
	})

	pubBytes, err := x509.MarshalPKIXPublicKey(&privateKey.PublicKey)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal public key: %w", err)
	}
	pubPEM := pem.EncodeToMemory(&pem.Block{
		Type:  "PUBLIC KEY",
		Bytes: pubBytes,
	})

	return privPEM, pubPEM, nil
}

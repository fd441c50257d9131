package di

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	dbout "storefront/internal/adapters/out/db"
	fsout "storefront/internal/adapters/out/firestore"
	gcsout "storefront/internal/adapters/out/gcs"
	"storefront/internal/adapters/out/identity"
	"storefront/internal/adapters/out/mail"
	"storefront/internal/adapters/out/memory"
	redisout "storefront/internal/adapters/out/redis"
	"storefront/internal/application/usecase"
	addressdom "storefront/internal/domain/address"
	pcbuilddom "storefront/internal/domain/pcbuild"
	userdom "storefront/internal/domain/user"
	"storefront/internal/platform/di/shared"
)

// builderSelectionTTL keeps a stored PC-builder selection around long after
// its session expired, so a returning client can reopen it.
const builderSelectionTTL = 30 * 24 * time.Hour

var errWiringNilInfra = errors.New("di: wiring policy infra is nil")

// repositories picks the profile and address backends.
// Policy:
// - Firestore client present: Firestore repositories.
// - Postgres connection present: Postgres repositories fed by LISTEN/NOTIFY.
// - Otherwise: process-local memory repositories.
func buildRepositories(infra *shared.Infra) (userdom.Repository, addressdom.Repository, string, error) {
	if infra == nil {
		return nil, nil, "", errWiringNilInfra
	}
	switch {
	case infra.Firestore != nil:
		c := infra.Firestore.Client
		return fsout.NewProfileRepositoryFS(c), fsout.NewAddressRepositoryFS(c), "firestore", nil
	case infra.DB != nil && infra.Notifier != nil:
		db := infra.DB.Client
		return dbout.NewProfileRepositoryPG(db, infra.Notifier), dbout.NewAddressRepositoryPG(db, infra.Notifier), "postgres", nil
	default:
		return memory.NewProfileRepository(), memory.NewAddressRepository(), "memory", nil
	}
}

// buildIdentity uses Firebase when both the admin client and a web API key
// are available. With a remote profile backend but no Firebase the process
// falls back to the memory provider and says so.
func buildIdentity(ctx context.Context, infra *shared.Infra, log *zap.Logger) (userdom.IdentityProvider, error) {
	if infra == nil {
		return nil, errWiringNilInfra
	}
	if infra.FirebaseAuth == nil {
		if infra.Firestore != nil || infra.DB != nil {
			log.Warn("[di] firebase auth unavailable, using in-memory identity provider")
		}
		return memory.NewIdentity(), nil
	}

	cfg := infra.Config
	key, err := infra.SecretValue(ctx, cfg.FirebaseAPIKey, cfg.FirebaseAPIKeySecret)
	if err != nil {
		return nil, err
	}
	var pw identity.PasswordVerifier
	if key == "" {
		log.Warn("[di] FIREBASE_API_KEY is empty, password sign-in disabled")
	} else {
		v, err := identity.NewToolkitVerifier(ctx, key)
		if err != nil {
			return nil, err
		}
		pw = v
	}
	return identity.NewFirebase(infra.FirebaseAuth, pw, log), nil
}

// buildKV returns the per-session key-value namespace factory.
// Policy: Redis when connected, otherwise one memory store per session id
// kept for the life of the process.
func buildKV(infra *shared.Infra) func(sessionID string) pcbuilddom.KV {
	if infra != nil && infra.Redis != nil {
		store := redisout.NewStore(infra.Redis, infra.Config.RedisPrefix, builderSelectionTTL)
		return store.Namespace
	}
	return memory.NewNamespaces(builderSelectionTTL).Namespace
}

// buildPictures returns nil (feature disabled) without a bucket.
func buildPictures(infra *shared.Infra) userdom.PictureStore {
	if infra == nil {
		return nil
	}
	if infra.GCS != nil {
		return gcsout.NewPictureStoreGCS(infra.GCS, strings.TrimSpace(infra.Config.GCSBucket))
	}
	if infra.Firestore == nil && infra.DB == nil {
		return memory.Pictures{}
	}
	return nil
}

// buildMailer returns nil (receipts disabled) unless a SendGrid key and a
// sender address are configured.
func buildMailer(ctx context.Context, infra *shared.Infra, log *zap.Logger) (usecase.ReceiptMailer, error) {
	if infra == nil {
		return nil, errWiringNilInfra
	}
	cfg := infra.Config
	key, err := infra.SecretValue(ctx, cfg.SendGridAPIKey, cfg.SendGridAPIKeySecret)
	if err != nil {
		return nil, err
	}
	if key == "" || strings.TrimSpace(cfg.MailFrom) == "" {
		return nil, nil
	}
	return mail.NewReceiptMailer(mail.NewSendGridClient(key, cfg.MailFromName, log), cfg.MailFrom), nil
}

// Package shared owns the external clients the storefront container is
// built from.
package shared

import (
	"context"
	"errors"
	"fmt"
	"strings"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/storage"
	firebase "firebase.google.com/go/v4"
	firebaseauth "firebase.google.com/go/v4/auth"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	dbout "storefront/internal/adapters/out/db"
	redisout "storefront/internal/adapters/out/redis"
	"storefront/internal/adapters/out/secret"
	appcfg "storefront/internal/infra/config"
	"storefront/internal/infra/database"
	firestoreinfra "storefront/internal/infra/firestore"
)

// Infra holds the clients opened for the configured backends. A nil field
// means the backend is not in use.
//
// Firestore, Postgres and Redis are strict: if configured and unreachable
// NewInfra fails. Secret Manager, GCS and Firebase Auth are best-effort.
type Infra struct {
	Config    *appcfg.Config
	ProjectID string

	Firestore     *firestoreinfra.ClientWrapper
	DB            *database.DB
	Notifier      *dbout.Notifier
	Redis         *goredis.Client
	GCS           *storage.Client
	FirebaseAuth  *firebaseauth.Client
	SecretManager *secretmanager.Client
	Secrets       *secret.Resolver

	log *zap.Logger
}

// NewInfra opens what cfg asks for.
func NewInfra(ctx context.Context, cfg *appcfg.Config, log *zap.Logger) (*Infra, error) {
	if cfg == nil {
		return nil, errors.New("shared.infra: config is nil")
	}
	if log == nil {
		log = zap.NewNop()
	}
	inf := &Infra{
		Config:    cfg,
		ProjectID: resolveProjectID(cfg),
		log:       log.Named("infra"),
	}

	var clientOpts []option.ClientOption
	if f := strings.TrimSpace(cfg.FirestoreCredentialsFile); f != "" {
		clientOpts = append(clientOpts, option.WithCredentialsFile(f))
		inf.log.Info("[shared.infra] using credentials file", zap.String("file", redactPath(f)))
	}

	// 1) Secret Manager (best-effort, only when a secret is referenced)
	if cfg.FirebaseAPIKeySecret != "" || cfg.SendGridAPIKeySecret != "" {
		sm, err := secretmanager.NewClient(ctx, clientOpts...)
		if err != nil {
			inf.log.Warn("[shared.infra] secretmanager unavailable, secret-backed keys disabled", zap.Error(err))
		} else {
			inf.SecretManager = sm
			inf.Secrets = secret.NewResolver(sm, inf.ProjectID)
		}
	}

	// 2) Profile backend (strict)
	switch cfg.ProfileBackend {
	case appcfg.BackendMemory, "":
	case appcfg.BackendFirestore:
		cw, err := firestoreinfra.NewClient(ctx, firstNonEmpty(cfg.FirestoreProjectID, inf.ProjectID), cfg.FirestoreCredentialsFile, inf.log)
		if err != nil {
			_ = inf.Close()
			return nil, fmt.Errorf("shared.infra: %w", err)
		}
		inf.Firestore = cw
	case appcfg.BackendPostgres:
		dsn := database.DSN(cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBSSLMode)
		db, err := database.NewConnection(ctx, dsn, inf.log)
		if err != nil {
			_ = inf.Close()
			return nil, fmt.Errorf("shared.infra: %w", err)
		}
		inf.DB = db
		if err := db.EnsureSchema(ctx); err != nil {
			_ = inf.Close()
			return nil, fmt.Errorf("shared.infra: %w", err)
		}
		n, err := dbout.NewNotifier(dsn, inf.log, database.ProfilesChannel, database.AddressesChannel)
		if err != nil {
			_ = inf.Close()
			return nil, fmt.Errorf("shared.infra: %w", err)
		}
		inf.Notifier = n
	default:
		_ = inf.Close()
		return nil, fmt.Errorf("shared.infra: unknown PROFILE_BACKEND %q", cfg.ProfileBackend)
	}

	// 3) Redis (strict when configured)
	if addr := strings.TrimSpace(cfg.RedisAddr); addr != "" {
		rc, err := redisout.Connect(ctx, addr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			_ = inf.Close()
			return nil, fmt.Errorf("shared.infra: %w", err)
		}
		inf.Redis = rc
		inf.log.Info("[shared.infra] redis connected", zap.String("addr", addr))
	}

	// 4) GCS (best-effort)
	if strings.TrimSpace(cfg.GCSBucket) != "" {
		gcs, err := storage.NewClient(ctx, clientOpts...)
		if err != nil {
			inf.log.Warn("[shared.infra] storage client failed, profile pictures disabled", zap.Error(err))
		} else {
			inf.GCS = gcs
		}
	}

	// 5) Firebase Auth (best-effort, not used with the memory backend)
	if cfg.ProfileBackend != appcfg.BackendMemory && cfg.ProfileBackend != "" {
		app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: firstNonEmpty(cfg.FirebaseProjectID, inf.ProjectID)}, clientOpts...)
		if err != nil {
			inf.log.Warn("[shared.infra] firebase app init failed", zap.Error(err))
		} else if ac, err := app.Auth(ctx); err != nil {
			inf.log.Warn("[shared.infra] firebase auth init failed", zap.Error(err))
		} else {
			inf.FirebaseAuth = ac
			inf.log.Info("[shared.infra] firebase auth initialized")
		}
	}

	return inf, nil
}

// SecretValue returns direct if set, otherwise the Secret Manager value of
// secretName. Both empty yields "".
func (i *Infra) SecretValue(ctx context.Context, direct, secretName string) (string, error) {
	if strings.TrimSpace(direct) != "" || strings.TrimSpace(secretName) == "" {
		return strings.TrimSpace(direct), nil
	}
	if i.Secrets == nil {
		return "", fmt.Errorf("shared.infra: secret %q referenced but Secret Manager is unavailable", secretName)
	}
	return i.Secrets.Value(ctx, direct, secretName)
}

// Ping checks the strict backends.
func (i *Infra) Ping(ctx context.Context) error {
	if i.Firestore != nil {
		if err := i.Firestore.Ping(ctx); err != nil {
			return err
		}
	}
	if i.DB != nil {
		if err := i.DB.Client.PingContext(ctx); err != nil {
			return fmt.Errorf("database: ping: %w", err)
		}
	}
	if i.Redis != nil {
		if err := i.Redis.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis: ping: %w", err)
		}
	}
	return nil
}

func (i *Infra) Close() error {
	if i == nil {
		return nil
	}
	var errs []error
	if i.Notifier != nil {
		errs = append(errs, i.Notifier.Close())
	}
	if i.DB != nil {
		errs = append(errs, i.DB.Close())
	}
	if i.Firestore != nil {
		errs = append(errs, i.Firestore.Close())
	}
	if i.Redis != nil {
		errs = append(errs, i.Redis.Close())
	}
	if i.GCS != nil {
		errs = append(errs, i.GCS.Close())
	}
	if i.SecretManager != nil {
		errs = append(errs, i.SecretManager.Close())
	}
	return errors.Join(errs...)
}

func resolveProjectID(cfg *appcfg.Config) string {
	return firstNonEmpty(cfg.FirestoreProjectID, cfg.GCPProjectID, cfg.FirebaseProjectID)
}

func firstNonEmpty(vs ...string) string {
	for _, v := range vs {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

// redactPath keeps only the last path segment.
func redactPath(p string) string {
	p = strings.ReplaceAll(strings.TrimSpace(p), "\\", "/")
	if p == "" {
		return ""
	}
	parts := strings.Split(p, "/")
	last := parts[len(parts)-1]
	if last == "" {
		return "***"
	}
	return "***/" + last
}

package shared

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"cloud.google.com/go/firestore"
	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"cloud.google.com/go/storage"

	firebase "firebase.google.com/go/v4"
	firebaseauth "firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"

	appcfg "storefront/internal/infra/config"
	"storefront/internal/infra/database"
)

// Infra is shared runtime infrastructure for DI.
//   - owns external clients (Firestore/FirebaseAuth/GCS/SecretManager/Postgres)
//   - owns env/config-resolved runtime settings (bucket, API keys)
//
// Infra must NOT depend on routers, handlers, or queries.
type Infra struct {
	// Config
	Config    *appcfg.Config
	ProjectID string

	// Clients (owned; Close-managed)
	Firestore     *firestore.Client
	GCS           *storage.Client
	FirebaseApp   *firebase.App
	FirebaseAuth  *firebaseauth.Client
	SecretManager *secretmanager.Client
	DB            *sql.DB // nil when no mirror database is configured

	// Runtime settings (resolved once; secrets win over plain env values)
	ProductImageBucket string
	FirebaseAPIKey     string
	SendGridAPIKey     string
}

// NewInfra initializes shared infra.
// Firestore is strict (return error). GCS, Firebase/Auth, SecretManager and
// Postgres are best-effort (warn + continue); the features they back degrade.
func NewInfra(ctx context.Context) (*Infra, error) {
	cfg := appcfg.Load()
	if cfg == nil {
		return nil, errors.New("shared.infra: config is nil")
	}

	projectID := resolveProjectID(cfg)
	if projectID == "" {
		return nil, errors.New("shared.infra: projectID is empty (set FIRESTORE_PROJECT_ID or GOOGLE_CLOUD_PROJECT)")
	}

	inf := &Infra{
		Config:    cfg,
		ProjectID: projectID,
	}

	// Credentials file (optional; mainly for local dev)
	credFile := strings.TrimSpace(cfg.FirestoreCredentialsFile)
	if credFile == "" {
		credFile = strings.TrimSpace(cfg.GCPCreds) // GOOGLE_APPLICATION_CREDENTIALS
	}
	var clientOpts []option.ClientOption
	if credFile != "" {
		clientOpts = append(clientOpts, option.WithCredentialsFile(credFile))
		log.Printf("[shared.infra] Using credentials file for GCP clients: %s", redactPath(credFile))
	} else {
		log.Printf("[shared.infra] Using Application Default Credentials (no credentials file configured)")
	}

	// 1) Optional: Secret Manager client (API keys below prefer it)
	{
		sm, err := secretmanager.NewClient(ctx, clientOpts...)
		if err != nil {
			log.Printf("[shared.infra] WARN: secretmanager.NewClient failed: %v (secret-backed settings fall back to env)", err)
			sm = nil
		}
		inf.SecretManager = sm
	}

	// 2) Firestore (strict)
	{
		fsClient, err := firestore.NewClient(ctx, inf.ProjectID, clientOpts...)
		if err != nil {
			return nil, fmt.Errorf("shared.infra: firestore.NewClient failed (project=%s): %w", inf.ProjectID, err)
		}
		inf.Firestore = fsClient
		log.Printf("[shared.infra] Firestore connected project=%s", inf.ProjectID)
	}

	// 3) GCS (best-effort; product image upload degrades without it)
	{
		gcsClient, err := storage.NewClient(ctx, clientOpts...)
		if err != nil {
			log.Printf("[shared.infra] WARN: storage.NewClient failed: %v (image upload disabled)", err)
		} else {
			inf.GCS = gcsClient
			log.Printf("[shared.infra] GCS storage client initialized")
		}
	}

	// 4) Firebase App/Auth (best-effort; admin verification and sign-out
	// revocation degrade without it)
	{
		fbCfg := &firebase.Config{ProjectID: inf.ProjectID}
		fbApp, err := firebase.NewApp(ctx, fbCfg, clientOpts...)
		if err != nil {
			log.Printf("[shared.infra] WARN: firebase app init failed: %v", err)
		} else {
			inf.FirebaseApp = fbApp
			authClient, err := fbApp.Auth(ctx)
			if err != nil {
				log.Printf("[shared.infra] WARN: firebase auth init failed: %v", err)
			} else {
				inf.FirebaseAuth = authClient
				log.Printf("[shared.infra] Firebase Auth initialized")
			}
		}
	}

	// 5) Optional: Postgres mirror for order reporting
	if dsn := strings.TrimSpace(cfg.DatabaseURL); dsn != "" {
		db, err := database.Connect(ctx, dsn)
		if err != nil {
			log.Printf("[shared.infra] WARN: postgres connect failed: %v (order mirror disabled)", err)
		} else {
			inf.DB = db
		}
	}

	// 6) Runtime settings (resolve once)
	inf.ProductImageBucket = strings.TrimSpace(cfg.GCSBucket)
	if inf.ProductImageBucket == "" {
		log.Printf("[shared.infra] WARN: GCS_BUCKET is empty (image upload may fail)")
	}

	inf.FirebaseAPIKey = inf.resolveSecretSetting(ctx, cfg.FirebaseAPIKeySecret, cfg.FirebaseAPIKey, "FIREBASE_API_KEY")
	if inf.FirebaseAPIKey == "" {
		log.Printf("[shared.infra] WARN: Firebase API key is empty (password sign-in disabled)")
	}
	inf.SendGridAPIKey = inf.resolveSecretSetting(ctx, cfg.SendGridKeySecret, cfg.SendGridAPIKey, "SENDGRID_API_KEY")
	if inf.SendGridAPIKey == "" {
		log.Printf("[shared.infra] WARN: SendGrid API key is empty (confirmation mail disabled)")
	}

	if inf.Firestore == nil {
		_ = inf.Close()
		return nil, errors.New("shared.infra: firestore client is nil after initialization (unexpected)")
	}

	return inf, nil
}

func (i *Infra) Close() error {
	if i == nil {
		return nil
	}
	if i.Firestore != nil {
		_ = i.Firestore.Close()
	}
	if i.GCS != nil {
		_ = i.GCS.Close()
	}
	if i.SecretManager != nil {
		_ = i.SecretManager.Close()
	}
	if i.DB != nil {
		_ = i.DB.Close()
	}
	return nil
}

// resolveSecretSetting prefers the Secret Manager secret (when configured and
// reachable) over the plain env value.
func (i *Infra) resolveSecretSetting(ctx context.Context, secretID, envValue, label string) string {
	secretID = strings.TrimSpace(secretID)
	if secretID != "" && i.SecretManager != nil {
		name := fmt.Sprintf("projects/%s/secrets/%s/versions/latest", i.ProjectID, secretID)
		resp, err := i.SecretManager.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{Name: name})
		if err != nil {
			log.Printf("[shared.infra] WARN: AccessSecretVersion failed for %s (%s): %v (falling back to env)", label, secretID, err)
		} else if resp != nil && resp.Payload != nil {
			if v := strings.TrimSpace(string(resp.Payload.Data)); v != "" {
				log.Printf("[shared.infra] %s resolved from Secret Manager", label)
				return v
			}
		}
	}
	return strings.TrimSpace(envValue)
}

func resolveProjectID(cfg *appcfg.Config) string {
	if v := strings.TrimSpace(cfg.FirestoreProjectID); v != "" {
		return v
	}
	if v := strings.TrimSpace(os.Getenv("GOOGLE_CLOUD_PROJECT")); v != "" {
		return v
	}
	return ""
}

func redactPath(p string) string {
	parts := strings.Split(p, string(os.PathSeparator))
	if len(parts) <= 2 {
		return p
	}
	return "…" + string(os.PathSeparator) + strings.Join(parts[len(parts)-2:], string(os.PathSeparator))
}

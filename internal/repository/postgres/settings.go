package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/alex90271/stripecheckout/pkg/database"
	apperrors "github.com/alex90271/stripecheckout/pkg/errors"
	"github.com/alex90271/stripecheckout/pkg/secrets"

	"github.com/alex90271/stripecheckout/internal/domain"
)

// SettingsRepository implements repository.SettingsRepository using
// PostgreSQL. Secret-valued keys are encrypted before storage.
type SettingsRepository struct {
	db     database.DBTX
	cipher *secrets.Cipher
}

// NewSettingsRepository creates a new PostgreSQL-backed settings repository.
func NewSettingsRepository(db database.DBTX, cipher *secrets.Cipher) *SettingsRepository {
	return &SettingsRepository{db: db, cipher: cipher}
}

// Get retrieves one setting value, decrypting secrets.
func (r *SettingsRepository) Get(ctx context.Context, key string) (string, error) {
	query := `SELECT value FROM settings WHERE key = $1`

	var value string
	if err := r.db.QueryRow(ctx, query, key).Scan(&value); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", apperrors.NotFound("setting", key)
		}
		return "", fmt.Errorf("select setting: %w", err)
	}

	if domain.SecretSettingKeys[key] {
		plaintext, err := r.cipher.Decrypt(value)
		if err != nil {
			return "", fmt.Errorf("decrypt setting %s: %w", key, err)
		}
		return plaintext, nil
	}
	return value, nil
}

// Set upserts one setting value, encrypting secrets.
func (r *SettingsRepository) Set(ctx context.Context, key, value string) error {
	if domain.SecretSettingKeys[key] {
		encrypted, err := r.cipher.Encrypt(value)
		if err != nil {
			return fmt.Errorf("encrypt setting %s: %w", key, err)
		}
		value = encrypted
	}

	query := `
		INSERT INTO settings (key, value, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`

	if _, err := r.db.Exec(ctx, query, key, value, time.Now().UTC()); err != nil {
		return fmt.Errorf("upsert setting: %w", err)
	}
	return nil
}

// Load returns the full operator configuration. Missing keys take their zero
// values; only decryption failures are fatal.
func (r *SettingsRepository) Load(ctx context.Context) (*domain.Settings, error) {
	query := `SELECT key, value FROM settings`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("select settings: %w", err)
	}
	defer rows.Close()

	values := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("scan setting row: %w", err)
		}
		if domain.SecretSettingKeys[key] {
			if value, err = r.cipher.Decrypt(value); err != nil {
				return nil, fmt.Errorf("decrypt setting %s: %w", key, err)
			}
		}
		values[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate setting rows: %w", err)
	}

	return settingsFromMap(values), nil
}

func settingsFromMap(values map[string]string) *domain.Settings {
	s := &domain.Settings{
		SecretKey:            values[domain.SettingSecretKey],
		WebhookSecret:        values[domain.SettingWebhookSecret],
		ShippingRateID:       values[domain.SettingShippingRateID],
		ProductIDs:           domain.ParseProductIDs(values[domain.SettingProductIDs]),
		StoreDisabledMessage: values[domain.SettingStoreDisabledMessage],
		Timezone:             values[domain.SettingTimezone],
		AdminEmail:           values[domain.SettingAdminEmail],
		GroupMeBotID:         values[domain.SettingGroupMeBotID],
		GroupMeGroupID:       values[domain.SettingGroupMeGroupID],
		ConsentMessage:       values[domain.SettingConsentMessage],
		ShippingMessage:      values[domain.SettingShippingMessage],
		ReceiptMessage:       values[domain.SettingReceiptMessage],
	}
	if n, err := strconv.Atoi(values[domain.SettingMaxQuantityPerItem]); err == nil {
		s.MaxQuantityPerItem = n
	}
	s.EnableInvoices = parseBool(values[domain.SettingEnableInvoices])
	s.DisableStore = parseBool(values[domain.SettingDisableStore])
	s.GroupMeEnabled = parseBool(values[domain.SettingGroupMeEnabled])
	return s
}

// parseBool accepts the usual textual forms; anything unrecognized is false.
func parseBool(v string) bool {
	b, err := strconv.ParseBool(v)
	return err == nil && b
}

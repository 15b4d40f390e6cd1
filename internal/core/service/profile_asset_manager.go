package service

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/cloudnative/account-service/internal/core/domain"
	"github.com/cloudnative/account-service/internal/core/ports"
)

// Inconsistency kinds reported to the observer.
const (
	InconsistencyOrphanedObject  = "orphaned_object"
	InconsistencyUnlinkedAsset   = "unlinked_asset"
	InconsistencyDanglingPointer = "dangling_pointer"
)

type profileAssetManager struct {
	accounts ports.AccountRepository
	assets   ports.AssetRepository
	store    ports.AssetStore
	obs      ports.Observer
	log      zerolog.Logger
	now      func() time.Time
}

// NewProfileAssetManager returns a ProfileAssetManager that keeps the account
// link, the metadata row and the stored object in agreement.
func NewProfileAssetManager(
	accounts ports.AccountRepository,
	assets ports.AssetRepository,
	store ports.AssetStore,
	obs ports.Observer,
	log zerolog.Logger,
) ports.ProfileAssetManager {
	return &profileAssetManager{
		accounts: accounts,
		assets:   assets,
		store:    store,
		obs:      obs,
		log:      log,
		now:      time.Now,
	}
}

// Upload stores a new picture for account, replacing any existing one. The
// old asset, linked or left unlinked by an earlier failed upload, is fully
// removed before the new key is generated.
func (m *profileAssetManager) Upload(ctx context.Context, account *domain.Account, in ports.UploadInput) (*domain.ProfileAsset, error) {
	if !domain.IsSupportedImageType(in.ContentType) {
		return nil, domain.ErrUnsupportedMediaType
	}
	if !account.Verified {
		return nil, domain.ErrNotVerified
	}

	if err := m.clearPrevious(ctx, account); err != nil {
		return nil, fmt.Errorf("upload picture: %w", err)
	}

	fileName := cleanFileName(in.FileName)
	key := uuid.NewString() + "_" + fileName

	if err := m.store.Put(ctx, key, in.Body, in.Size, in.ContentType); err != nil {
		return nil, fmt.Errorf("upload picture: store object: %w", err)
	}

	url, err := m.store.URL(ctx, key)
	if err != nil {
		m.orphaned(account.Email, key, err)
		return nil, fmt.Errorf("upload picture: resolve url: %w: %w", domain.ErrInconsistentState, err)
	}

	now := m.now().UTC()
	asset := &domain.ProfileAsset{
		ID:           uuid.NewString(),
		FileName:     fileName,
		Key:          key,
		URL:          url,
		ContentType:  in.ContentType,
		Size:         in.Size,
		AccountEmail: account.Email,
		UploadedAt:   now,
	}
	if err := m.assets.Insert(ctx, asset); err != nil {
		m.orphaned(account.Email, key, err)
		return nil, fmt.Errorf("upload picture: save metadata: %w: %w", domain.ErrInconsistentState, err)
	}

	if err := m.accounts.SetProfileAsset(ctx, account.Email, asset.ID, now); err != nil {
		return nil, m.discard(ctx, asset, fmt.Errorf("upload picture: link account: %w", err))
	}
	account.ProfileAssetID = asset.ID
	account.Touch(now)

	m.log.Info().Str("email", account.Email).Str("key", key).Msg("profile picture uploaded")
	return asset, nil
}

// Get returns the account's picture with its URL resolved from the store.
func (m *profileAssetManager) Get(ctx context.Context, account *domain.Account) (*domain.ProfileAsset, error) {
	if !account.Verified {
		return nil, domain.ErrNotVerified
	}

	asset, err := m.resolve(ctx, account)
	if err != nil {
		return nil, fmt.Errorf("get picture: %w", err)
	}

	url, err := m.store.URL(ctx, asset.Key)
	if err != nil {
		return nil, fmt.Errorf("get picture: resolve url: %w", err)
	}
	asset.URL = url
	return asset, nil
}

// Delete removes the account's picture. A failed object delete is logged and
// the metadata and link are removed anyway.
func (m *profileAssetManager) Delete(ctx context.Context, account *domain.Account) error {
	if !account.Verified {
		return domain.ErrNotVerified
	}

	asset, err := m.resolve(ctx, account)
	if err != nil {
		return fmt.Errorf("delete picture: %w", err)
	}

	if err := m.remove(ctx, account, asset); err != nil {
		return fmt.Errorf("delete picture: %w", err)
	}

	m.log.Info().Str("email", account.Email).Str("key", asset.Key).Msg("profile picture deleted")
	return nil
}

// resolve loads the linked metadata and confirms the object still exists.
// A link whose row or object is gone is reported as ErrAssetNotFound.
func (m *profileAssetManager) resolve(ctx context.Context, account *domain.Account) (*domain.ProfileAsset, error) {
	if !account.HasProfileAsset() {
		return nil, domain.ErrAssetNotFound
	}

	asset, err := m.assets.FindByID(ctx, account.ProfileAssetID)
	if err != nil {
		if errors.Is(err, domain.ErrAssetNotFound) {
			m.dangling(account, "")
		}
		return nil, err
	}

	ok, err := m.store.Exists(ctx, asset.Key)
	if err != nil {
		return nil, err
	}
	if !ok {
		m.dangling(account, asset.Key)
		return nil, domain.ErrAssetNotFound
	}
	return asset, nil
}

// clearPrevious removes whatever asset the account owns. The row is looked up
// by owner so one stored by an upload that failed to link is found too.
func (m *profileAssetManager) clearPrevious(ctx context.Context, account *domain.Account) error {
	owned, err := m.assets.FindByAccountEmail(ctx, account.Email)
	if err != nil && !errors.Is(err, domain.ErrAssetNotFound) {
		return fmt.Errorf("load previous: %w", err)
	}
	if owned == nil && !account.HasProfileAsset() {
		return nil
	}
	if owned != nil && owned.ID != account.ProfileAssetID {
		m.log.Warn().
			Str("email", account.Email).
			Str("asset_id", owned.ID).
			Msg("removing unlinked profile asset")
	}

	if err := m.remove(ctx, account, owned); err != nil {
		return fmt.Errorf("remove previous: %w", err)
	}
	m.log.Info().Str("email", account.Email).Msg("previous profile picture replaced")
	return nil
}

// remove deletes the object and metadata of asset (which may be nil for a
// dangling link) and unlinks the account if it is linked.
func (m *profileAssetManager) remove(ctx context.Context, account *domain.Account, asset *domain.ProfileAsset) error {
	if asset != nil {
		if err := m.store.Delete(ctx, asset.Key); err != nil {
			m.orphaned(account.Email, asset.Key, err)
		}
		if err := m.assets.Delete(ctx, asset.ID); err != nil {
			return fmt.Errorf("delete metadata: %w", err)
		}
	}
	if !account.HasProfileAsset() {
		return nil
	}

	now := m.now().UTC()
	if err := m.accounts.SetProfileAsset(ctx, account.Email, "", now); err != nil {
		return fmt.Errorf("unlink account: %w", err)
	}
	account.ProfileAssetID = ""
	account.Touch(now)
	return nil
}

// discard undoes an upload whose account link failed and returns cause. A row
// that cannot be deleted keeps its object and stays unlinked until the next
// upload clears it.
func (m *profileAssetManager) discard(ctx context.Context, asset *domain.ProfileAsset, cause error) error {
	ctx = context.WithoutCancel(ctx)

	if err := m.assets.Delete(ctx, asset.ID); err != nil {
		m.obs.Inconsistency(InconsistencyUnlinkedAsset)
		m.log.Error().Err(err).
			Str("email", asset.AccountEmail).
			Str("asset_id", asset.ID).
			Str("key", asset.Key).
			Msg("profile asset stored but not linked to account")
		return fmt.Errorf("%w: %w", domain.ErrInconsistentState, cause)
	}
	if err := m.store.Delete(ctx, asset.Key); err != nil {
		m.orphaned(asset.AccountEmail, asset.Key, err)
	}
	return cause
}

func (m *profileAssetManager) orphaned(email, key string, cause error) {
	m.obs.Inconsistency(InconsistencyOrphanedObject)
	m.log.Error().Err(cause).
		Str("email", email).
		Str("key", key).
		Msg("orphaned object left in asset store")
}

func (m *profileAssetManager) dangling(account *domain.Account, key string) {
	m.obs.Inconsistency(InconsistencyDanglingPointer)
	m.log.Warn().
		Str("email", account.Email).
		Str("asset_id", account.ProfileAssetID).
		Str("key", key).
		Msg("profile asset link points at missing data")
}

// cleanFileName strips any directory components a client may have sent.
func cleanFileName(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = path.Base(strings.TrimSpace(name))
	if name == "." || name == "/" || name == "" {
		return "upload"
	}
	return name
}

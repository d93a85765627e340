package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"slices"
	"strings"
	"time"

	"github.com/example/festisolde/internal/infrastructure/store"
	"github.com/example/festisolde/internal/logging"
	"github.com/example/festisolde/internal/model"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrMissingTitle       = errors.New("product title is required")
	ErrMissingCategory    = errors.New("product category is required")
	ErrInvalidPrice       = errors.New("product price must be positive")
	ErrInvalidPromoPrice  = errors.New("promo price cannot be negative")
	ErrInvalidStock       = errors.New("stock cannot be negative")
	ErrNoImages           = errors.New("at least one image is required")
	ErrMissingShop        = errors.New("shop id is required")
	ErrNotOwner           = errors.New("product belongs to another shop")
	ErrDeleteNotConfirmed = errors.New("product deletion must be confirmed")
)

var logger = logging.New("catalog")

// Fields are the editable columns of a product.
type Fields struct {
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Category    string           `json:"category"`
	Price       decimal.Decimal  `json:"price"`
	PromoPrice  *decimal.Decimal `json:"promo_price,omitempty"`
	Stock       int              `json:"stock"`
}

// normalize trims text and stores a zero promo price as absent.
func (f Fields) normalize() Fields {
	f.Title = strings.TrimSpace(f.Title)
	f.Description = strings.TrimSpace(f.Description)
	f.Category = strings.TrimSpace(f.Category)
	if f.PromoPrice != nil && f.PromoPrice.IsZero() {
		f.PromoPrice = nil
	}
	return f
}

func (f Fields) validate() error {
	var errs []error
	if f.Title == "" {
		errs = append(errs, ErrMissingTitle)
	}
	if f.Category == "" {
		errs = append(errs, ErrMissingCategory)
	}
	if !f.Price.IsPositive() {
		errs = append(errs, ErrInvalidPrice)
	}
	if f.PromoPrice != nil && f.PromoPrice.IsNegative() {
		errs = append(errs, ErrInvalidPromoPrice)
	}
	if f.Stock < 0 {
		errs = append(errs, ErrInvalidStock)
	}
	return errors.Join(errs...)
}

// Upload is an image file to store with a product.
type Upload struct {
	Filename string
	Content  io.Reader
}

// Manager is the vendor and admin write surface of the catalog.
type Manager struct {
	products store.CatalogStore
	images   store.ImageStore
	now      func() time.Time
}

func NewManager(products store.CatalogStore, images store.ImageStore) *Manager {
	return &Manager{products: products, images: images, now: time.Now}
}

// GetProduct returns a single product.
func (m *Manager) GetProduct(ctx context.Context, id string) (*model.Product, error) {
	return m.products.GetProduct(ctx, id)
}

// CheckOwner fails with ErrNotOwner unless the product belongs to shopID.
func (m *Manager) CheckOwner(ctx context.Context, productID, shopID string) error {
	p, err := m.products.GetProduct(ctx, productID)
	if err != nil {
		return err
	}
	if p.ShopID != shopID {
		return ErrNotOwner
	}
	return nil
}

// CreateProduct uploads the images, then inserts the product row. Images
// uploaded before a failure are not cleaned up.
func (m *Manager) CreateProduct(ctx context.Context, shopID string, fields Fields, uploads []Upload) (string, error) {
	if shopID == "" {
		return "", ErrMissingShop
	}
	fields = fields.normalize()
	err := fields.validate()
	if len(uploads) == 0 {
		err = errors.Join(err, ErrNoImages)
	}
	if err != nil {
		return "", err
	}

	urls, err := m.upload(ctx, shopID, uploads)
	if err != nil {
		return "", err
	}

	created, err := m.products.InsertProduct(ctx, &model.Product{
		ShopID:      shopID,
		Title:       fields.Title,
		Description: fields.Description,
		Category:    fields.Category,
		Price:       fields.Price,
		PromoPrice:  fields.PromoPrice,
		Stock:       fields.Stock,
		Images:      urls,
	})
	if err != nil {
		logger.Error().Err(err).Str("shop_id", shopID).Int("orphaned_images", len(urls)).Msg("product insert failed after upload")
		return "", fmt.Errorf("create product: %w", err)
	}

	logger.Info().Str("product_id", created.ID).Str("shop_id", shopID).Msg("product created")
	return created.ID, nil
}

// UpdateProduct keeps the existing images minus removedURLs, appends the
// newly uploaded ones and overwrites the row.
func (m *Manager) UpdateProduct(ctx context.Context, id string, fields Fields, added []Upload, removedURLs []string) error {
	fields = fields.normalize()
	if err := fields.validate(); err != nil {
		return err
	}

	existing, err := m.products.GetProduct(ctx, id)
	if err != nil {
		return err
	}

	images := make([]string, 0, len(existing.Images)+len(added))
	for _, u := range existing.Images {
		if !slices.Contains(removedURLs, u) {
			images = append(images, u)
		}
	}

	urls, err := m.upload(ctx, existing.ShopID, added)
	if err != nil {
		return err
	}
	images = append(images, urls...)

	imageURL := existing.ImageURL
	if slices.Contains(removedURLs, imageURL) {
		imageURL = ""
	}

	err = m.products.UpdateProduct(ctx, id, &model.Product{
		Title:       fields.Title,
		Description: fields.Description,
		Category:    fields.Category,
		Price:       fields.Price,
		PromoPrice:  fields.PromoPrice,
		Stock:       fields.Stock,
		ImageURL:    imageURL,
		Images:      images,
	})
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	return nil
}

// DeleteProduct hard-deletes a product once the caller confirmed it.
func (m *Manager) DeleteProduct(ctx context.Context, id string, confirmed bool) error {
	if !confirmed {
		return ErrDeleteNotConfirmed
	}
	if err := m.products.DeleteProduct(ctx, id); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	logger.Info().Str("product_id", id).Msg("product deleted")
	return nil
}

// ToggleFeatured flips the featured flag. view, when given, is updated
// before the store call and is not rolled back if the store fails.
func (m *Manager) ToggleFeatured(ctx context.Context, view *ListView, id string, current bool) error {
	next := !current
	if view != nil {
		view.SetFeatured(id, next)
	}
	if err := m.products.SetFeatured(ctx, id, next); err != nil {
		logger.Warn().Err(err).Str("product_id", id).Bool("featured", next).Msg("featured toggle failed")
		return fmt.Errorf("toggle featured: %w", err)
	}
	return nil
}

func (m *Manager) upload(ctx context.Context, shopID string, uploads []Upload) ([]string, error) {
	urls := make([]string, 0, len(uploads))
	for _, u := range uploads {
		url, err := m.images.UploadImage(ctx, m.objectName(shopID, u.Filename), u.Content)
		if err != nil {
			return nil, fmt.Errorf("upload %s: %w", u.Filename, err)
		}
		urls = append(urls, url)
	}
	return urls, nil
}

// objectName is <shopId>/<unix-nanos>-<random>.<ext>.
func (m *Manager) objectName(shopID, filename string) string {
	random := strings.ReplaceAll(uuid.New().String(), "-", "")[:12]
	name := fmt.Sprintf("%s/%d-%s", shopID, m.now().UnixNano(), random)
	if ext := strings.TrimPrefix(strings.ToLower(path.Ext(filename)), "."); ext != "" {
		name += "." + ext
	}
	return name
}

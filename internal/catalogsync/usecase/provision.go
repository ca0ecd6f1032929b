package usecase

import (
	"context"
	"fmt"
	"regexp"

	"github.com/bjorheimar/catalog-sync/internal/atvr"
	"github.com/bjorheimar/catalog-sync/internal/catalogsync"
	"github.com/bjorheimar/catalog-sync/internal/model"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Upstream taste codes are short alphanumerics. Anything else cannot be
// provisioned.
var codePattern = regexp.MustCompile(`^[A-Za-z0-9]{1,8}$`)

func wellFormed(code string) bool { return codePattern.MatchString(code) }

// taxonomy is the persisted category tree keyed by external code.
type taxonomy struct {
	categories   map[string]model.ProductCategory
	profiles     map[string]model.TasteProfile
	noneCategory string
	noneProfile  string
}

type provisionResult struct {
	tax               *taxonomy
	categoriesCreated int
	profilesCreated   int
}

// provisionTaxonomy makes sure every well-formed category and taste code in
// products exists, creating placeholders for unknown ones. In strict mode a
// malformed code fails before anything is written.
func (uc *syncUseCase) provisionTaxonomy(ctx context.Context, products []atvr.Product) (*provisionResult, error) {
	if uc.opts.Provisioning == catalogsync.ProvisioningStrict {
		for i := range products {
			if err := checkCodes(&products[i]); err != nil {
				return nil, err
			}
		}
	}

	res := &provisionResult{}
	if err := uc.ensureNoneTaxonomy(ctx, res); err != nil {
		return nil, err
	}
	tax, err := uc.loadTaxonomy(ctx)
	if err != nil {
		return nil, err
	}

	now := uc.now()
	var newCategories []model.ProductCategory
	queued := map[string]bool{}
	for i := range products {
		code := products[i].ProductTasteGroup
		if !wellFormed(code) || queued[code] {
			continue
		}
		if _, ok := tax.categories[code]; ok {
			continue
		}
		queued[code] = true
		newCategories = append(newCategories, model.ProductCategory{
			BaseModel:    model.BaseModel{ID: uuid.NewString(), CreatedAt: now, UpdatedAt: now},
			ExternalCode: code,
			Name:         model.UnknownCategoryName,
			Description:  model.UnknownCategoryName,
		})
	}
	if len(newCategories) > 0 {
		n, err := uc.Categories.CreateCategories(ctx, newCategories)
		if err != nil {
			return nil, fmt.Errorf("create placeholder categories: %w", err)
		}
		res.categoriesCreated += n
		if tax, err = uc.loadTaxonomy(ctx); err != nil {
			return nil, err
		}
	}

	var newProfiles []model.TasteProfile
	queued = map[string]bool{}
	for i := range products {
		cat, ok := tax.categories[products[i].ProductTasteGroup]
		code := products[i].ProductTasteGroup2
		if !ok || !wellFormed(code) || queued[code] {
			continue
		}
		if _, ok := tax.profiles[code]; ok {
			continue
		}
		queued[code] = true
		newProfiles = append(newProfiles, model.TasteProfile{
			BaseModel:    model.BaseModel{ID: uuid.NewString(), CreatedAt: now, UpdatedAt: now},
			ExternalCode: code,
			Name:         model.UnknownTasteProfileName,
			Description:  model.UnknownTasteProfileName,
			CategoryID:   cat.ID,
		})
	}
	if len(newProfiles) > 0 {
		n, err := uc.Categories.CreateProfiles(ctx, newProfiles)
		if err != nil {
			return nil, fmt.Errorf("create placeholder taste profiles: %w", err)
		}
		res.profilesCreated += n
		if tax, err = uc.loadTaxonomy(ctx); err != nil {
			return nil, err
		}
	}

	if res.categoriesCreated > 0 || res.profilesCreated > 0 {
		uc.logger.Info("provisioned placeholder taxonomy",
			zap.Int("categories", res.categoriesCreated),
			zap.Int("profiles", res.profilesCreated),
		)
	}
	res.tax = tax
	return res, nil
}

func checkCodes(p *atvr.Product) error {
	switch {
	case !wellFormed(p.ProductTasteGroup):
		return &catalogsync.ProvisioningError{
			ProductExternalID: p.ExternalID(), CategoryCode: p.ProductTasteGroup, TasteCode: p.ProductTasteGroup2,
			Reason: "malformed category code",
		}
	case !wellFormed(p.ProductTasteGroup2):
		return &catalogsync.ProvisioningError{
			ProductExternalID: p.ExternalID(), CategoryCode: p.ProductTasteGroup, TasteCode: p.ProductTasteGroup2,
			Reason: "malformed taste code",
		}
	}
	return nil
}

// ensureNoneTaxonomy creates the sentinel "None" category and profile.
func (uc *syncUseCase) ensureNoneTaxonomy(ctx context.Context, res *provisionResult) error {
	now := uc.now()
	n, err := uc.Categories.CreateCategories(ctx, []model.ProductCategory{{
		BaseModel:    model.BaseModel{ID: uuid.NewString(), CreatedAt: now, UpdatedAt: now},
		ExternalCode: model.NoneCategoryCode,
		Name:         model.NoneCategoryName,
		Description:  model.NoneCategoryName,
	}})
	if err != nil {
		return fmt.Errorf("create sentinel category: %w", err)
	}
	res.categoriesCreated += n

	none, err := uc.Categories.FindByExternalCode(ctx, model.NoneCategoryCode)
	if err != nil {
		return err
	}
	if none == nil {
		return fmt.Errorf("sentinel category %s missing after create", model.NoneCategoryCode)
	}

	n, err = uc.Categories.CreateProfiles(ctx, []model.TasteProfile{{
		BaseModel:    model.BaseModel{ID: uuid.NewString(), CreatedAt: now, UpdatedAt: now},
		ExternalCode: model.NoneCategoryCode,
		Name:         model.NoneCategoryName,
		Description:  model.NoneCategoryName,
		CategoryID:   none.ID,
	}})
	if err != nil {
		return fmt.Errorf("create sentinel taste profile: %w", err)
	}
	res.profilesCreated += n
	return nil
}

func (uc *syncUseCase) loadTaxonomy(ctx context.Context) (*taxonomy, error) {
	categories, err := uc.Categories.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load categories: %w", err)
	}
	tax := &taxonomy{
		categories: make(map[string]model.ProductCategory, len(categories)),
		profiles:   make(map[string]model.TasteProfile),
	}
	for _, c := range categories {
		tax.categories[c.ExternalCode] = c
		for _, p := range c.TasteProfiles {
			tax.profiles[p.ExternalCode] = p
		}
	}
	if c, ok := tax.categories[model.NoneCategoryCode]; ok {
		tax.noneCategory = c.ID
	}
	if p, ok := tax.profiles[model.NoneCategoryCode]; ok {
		tax.noneProfile = p.ID
	}
	return tax, nil
}

// resolve returns the category and taste profile ids for p. Unresolvable
// codes fail in strict mode. In lenient mode the product moves to the
// sentinel category and profile together, so its profile always belongs to
// its category.
func (uc *syncUseCase) resolve(tax *taxonomy, p *atvr.Product) (string, string, error) {
	reason := ""
	cat, catOK := tax.categories[p.ProductTasteGroup]
	profile, profileOK := tax.profiles[p.ProductTasteGroup2]
	switch {
	case !catOK || !wellFormed(p.ProductTasteGroup):
		reason = "category not provisioned"
	case !profileOK || !wellFormed(p.ProductTasteGroup2):
		reason = "taste profile not provisioned"
	case profile.CategoryID != cat.ID:
		reason = "taste profile belongs to another category"
	default:
		return cat.ID, profile.ID, nil
	}

	if uc.opts.Provisioning == catalogsync.ProvisioningStrict {
		return "", "", &catalogsync.ProvisioningError{
			ProductExternalID: p.ExternalID(), CategoryCode: p.ProductTasteGroup, TasteCode: p.ProductTasteGroup2,
			Reason: reason,
		}
	}
	uc.logger.Warn("product assigned to sentinel taxonomy",
		zap.String("product", p.ExternalID()),
		zap.String("category_code", p.ProductTasteGroup),
		zap.String("taste_code", p.ProductTasteGroup2),
		zap.String("reason", reason),
	)
	return tax.noneCategory, tax.noneProfile, nil
}

package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"shopify-integration-service/internal/clients"
	"shopify-integration-service/internal/models"
)

// weightUOMs maps Shopify weight units to ERP units of measure
var weightUOMs = map[string]string{
	"g":  "Gram",
	"kg": "Kg",
	"oz": "Ounce",
	"lb": "Pound",
}

// ItemResolver maps order lines to item codes, creating missing items from
// the platform catalog
type ItemResolver struct {
	sc *SyncContext
}

// NewItemResolver creates an item resolver for one sync
func NewItemResolver(sc *SyncContext) *ItemResolver {
	return &ItemResolver{sc: sc}
}

// lookup applies the resolution priority: alias, SKU, variant id, product id,
// then the trimmed title
func (r *ItemResolver) lookup(ctx context.Context, line clients.LineItem) (*models.Item, error) {
	items := r.sc.Store.Items

	for _, alias := range []string{line.SKU, line.VariantID, line.ProductID} {
		item, err := items.FindByAlias(ctx, r.sc.Shop.ID, alias)
		if err != nil || item != nil {
			return item, err
		}
	}

	item, err := items.FindBySKU(ctx, line.SKU)
	if err != nil || item != nil {
		return item, err
	}

	item, err = items.FindByVariantID(ctx, line.VariantID)
	if err != nil || item != nil {
		return item, err
	}

	// a product id only identifies a plain item; a template would be ambiguous
	item, err = items.FindByProductID(ctx, line.ProductID)
	if err != nil {
		return nil, err
	}
	if item != nil && !item.HasVariants && item.VariantOf == "" {
		return item, nil
	}

	return items.FindByName(ctx, line.Title)
}

// ResolveOrCreate returns the item code for an order line. A line whose
// product or variant is unknown locally is fetched and created first; a line
// without either falls back to an item named after its title.
func (r *ItemResolver) ResolveOrCreate(ctx context.Context, line clients.LineItem) (string, error) {
	item, err := r.lookup(ctx, line)
	if err != nil {
		return "", err
	}
	if item != nil {
		return item.ItemCode, nil
	}

	if err := r.ensureLine(ctx, line); err != nil {
		return "", err
	}

	item, err = r.lookup(ctx, line)
	if err != nil {
		return "", err
	}
	if item != nil {
		return item.ItemCode, nil
	}

	return r.makeItemByTitle(ctx, line.Title)
}

// EnsureOrderItems resolves every line of an order, returning item codes by line id
func (r *ItemResolver) EnsureOrderItems(ctx context.Context, order *clients.Order) (map[string]string, error) {
	codes := make(map[string]string, len(order.LineItems))
	for _, line := range order.LineItems {
		code, err := r.ResolveOrCreate(ctx, line)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to resolve item for line %s (%s)", line.ID, line.Title)
		}
		codes[line.ID] = code
	}
	return codes, nil
}

// ensureLine creates the platform product behind a line when it is missing
func (r *ItemResolver) ensureLine(ctx context.Context, line clients.LineItem) error {
	items := r.sc.Store.Items
	client := r.sc.Client

	if line.ProductID != "" {
		existing, err := items.FindByProductID(ctx, line.ProductID)
		if err != nil {
			return err
		}
		if existing == nil {
			product, err := client.GetProduct(ctx, line.ProductID)
			if err != nil {
				return errors.Wrapf(err, "failed to fetch product %s", line.ProductID)
			}
			if err := r.MakeItem(ctx, product); err != nil {
				return err
			}
		}
	}

	if line.VariantID != "" {
		existing, err := items.FindByVariantID(ctx, line.VariantID)
		if err != nil {
			return err
		}
		if existing == nil {
			variant, err := client.GetVariant(ctx, line.VariantID)
			if err != nil {
				return errors.Wrapf(err, "failed to fetch variant %s", line.VariantID)
			}
			product, err := client.GetProduct(ctx, variant.ProductID)
			if err != nil {
				return errors.Wrapf(err, "failed to fetch product %s", variant.ProductID)
			}
			if err := r.MakeItem(ctx, product); err != nil {
				return err
			}
		}
	}

	if line.ProductID == "" && line.VariantID == "" {
		title := strings.TrimSpace(line.Title)
		if title == "" {
			return nil
		}
		products, err := client.ListProducts(ctx, &clients.ListOptions{Title: title})
		if err != nil {
			return errors.Wrapf(err, "failed to search products titled %q", title)
		}
		for i := range products {
			if err := r.MakeItem(ctx, &products[i]); err != nil {
				return err
			}
		}
	}
	return nil
}

// MakeItem creates the items of a platform product: a single item, or a
// template with one variant item per platform variant. Existing items are kept.
func (r *ItemResolver) MakeItem(ctx context.Context, product *clients.Product) error {
	items := r.sc.Store.Items
	shop := r.sc.Shop

	if product.ProductType != "" {
		if err := items.EnsureItemGroup(ctx, product.ProductType, models.DefaultItemGroup); err != nil {
			return errors.Wrap(err, "failed to create item group")
		}
	}
	if product.Vendor != "" {
		if err := items.EnsureSupplier(ctx, product.Vendor, models.ShopifySupplierGroup); err != nil {
			return errors.Wrap(err, "failed to create supplier")
		}
	}

	if !product.HasVariants() {
		var variant *clients.Variant
		if len(product.Variants) > 0 {
			variant = &product.Variants[0]
		}
		item := r.baseItem(product, variant)
		item.ItemCode = product.ID
		item.ItemName = strings.TrimSpace(product.Title)
		return r.createItem(ctx, item, variant)
	}

	if !shop.CreateVariants {
		for i := range product.Variants {
			variant := &product.Variants[i]
			item := r.baseItem(product, variant)
			item.ItemCode = variant.ID
			item.ItemName = fmt.Sprintf("%s - %s", strings.TrimSpace(product.Title), variant.Title)
			if err := r.createItem(ctx, item, variant); err != nil {
				return err
			}
		}
		return nil
	}

	for _, option := range product.Options {
		if err := items.EnsureAttribute(ctx, option.Name, option.Values); err != nil {
			return errors.Wrapf(err, "failed to create attribute %s", option.Name)
		}
	}

	template := r.baseItem(product, nil)
	template.ItemCode = product.ID
	template.ItemName = strings.TrimSpace(product.Title)
	template.HasVariants = true
	for _, option := range product.Options {
		template.Attributes = append(template.Attributes, models.ItemVariantAttribute{Attribute: option.Name})
	}
	if err := r.createItem(ctx, template, nil); err != nil {
		return err
	}
	stored, err := items.FindByProductID(ctx, product.ID)
	if err != nil {
		return err
	}
	templateCode, templateName := template.ItemCode, template.ItemName
	if stored != nil && stored.HasVariants {
		templateCode, templateName = stored.ItemCode, stored.ItemName
	}

	for i := range product.Variants {
		variant := &product.Variants[i]
		item := r.baseItem(product, variant)
		item.ItemCode = variant.ID
		item.ItemName = fmt.Sprintf("%s - %s", templateName, variant.Title)
		item.VariantOf = templateCode

		values := variant.OptionValues()
		for idx, option := range product.Options {
			if idx >= len(values) || values[idx] == "" {
				continue
			}
			item.Attributes = append(item.Attributes, models.ItemVariantAttribute{
				Attribute:      option.Name,
				AttributeValue: values[idx],
				VariantOf:      templateCode,
			})
		}
		if err := r.createItem(ctx, item, variant); err != nil {
			return err
		}
	}
	return nil
}

func (r *ItemResolver) baseItem(product *clients.Product, variant *clients.Variant) *models.Item {
	shop := r.sc.Shop
	shopID := shop.ID

	itemGroup := shop.ItemGroup
	if itemGroup == "" {
		itemGroup = models.DefaultItemGroup
	}
	description := product.BodyHTML
	if description == "" {
		description = strings.TrimSpace(product.Title)
	}

	item := &models.Item{
		ItemName:             strings.TrimSpace(product.Title),
		Description:          description,
		ShopID:               &shopID,
		ShopifyProductID:     product.ID,
		ItemGroup:            itemGroup,
		MarketplaceItemGroup: product.ProductType,
		StockUOM:             models.DefaultStockUOM,
		IsStockItem:          true,
		DisabledOnShopify:    product.Status != "" && product.Status != "active",
		DefaultWarehouse:     shop.Warehouse,
		DefaultSupplier:      product.Vendor,
	}
	if variant != nil {
		item.ShopifyVariantID = variant.ID
		item.ShopifySKU = variant.SKU
		item.WeightUOM = weightUOMs[variant.WeightUnit]
		item.WeightPerUnit = variant.Weight
		item.Image = product.ImageFor(variant.ID)
	} else {
		item.Image = product.ImageFor("")
	}
	return item
}

// createItem inserts item unless its code exists. A code that clashes with an
// item group name gets the group appended.
func (r *ItemResolver) createItem(ctx context.Context, item *models.Item, variant *clients.Variant) error {
	items := r.sc.Store.Items
	shop := r.sc.Shop

	clash, err := items.ItemGroupExists(ctx, item.ItemCode)
	if err != nil {
		return err
	}
	if clash {
		item.ItemCode = fmt.Sprintf("%s (%s)", item.ItemCode, item.ItemGroup)
	}

	exists, err := items.Exists(ctx, item.ItemCode)
	if err != nil {
		return err
	}
	if !exists {
		if err := items.Create(ctx, item); err != nil {
			return errors.Wrapf(err, "failed to create item %s", item.ItemCode)
		}
		r.sc.logger().WithField("item_code", item.ItemCode).Debug("created item")
	}

	if item.HasVariants || !shop.UpdatePrice || shop.PriceList == "" {
		return nil
	}
	rate := decimal.Zero
	if variant != nil {
		rate = variant.Price
	}
	if err := items.UpsertPrice(ctx, item.ItemCode, shop.PriceList, rate); err != nil {
		return errors.Wrapf(err, "failed to set price of %s", item.ItemCode)
	}
	return nil
}

// makeItemByTitle creates a plain stock item whose code and name are the title
func (r *ItemResolver) makeItemByTitle(ctx context.Context, title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", errors.New("order line has no product, variant or title")
	}

	items := r.sc.Store.Items
	exists, err := items.Exists(ctx, title)
	if err != nil {
		return "", err
	}
	if exists {
		return title, nil
	}

	shop := r.sc.Shop
	shopID := shop.ID
	itemGroup := shop.ItemGroup
	if itemGroup == "" {
		itemGroup = models.DefaultItemGroup
	}
	item := &models.Item{
		ItemCode:         title,
		ItemName:         title,
		Description:      title,
		ShopID:           &shopID,
		ItemGroup:        itemGroup,
		StockUOM:         models.DefaultStockUOM,
		IsStockItem:      true,
		DefaultWarehouse: shop.Warehouse,
	}
	if err := items.Create(ctx, item); err != nil {
		return "", errors.Wrapf(err, "failed to create item %s", title)
	}
	return title, nil
}

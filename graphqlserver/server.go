package graphqlserver

import (
	"context"
	"encoding/json"

	gql "github.com/graph-gophers/graphql-go"
	"github.com/graph-gophers/graphql-go/relay"
	"gorm.io/gorm"

	"wms.GO/config"
	"wms.GO/graphql"
	"wms.GO/graphql/registry"
	"wms.GO/model"
	catalogEntity "wms.GO/model/entity/catalog"
	catalogRepo "wms.GO/model/repository/catalog"
	inventoryRepo "wms.GO/model/repository/inventory"
	mappingRepo "wms.GO/model/repository/mapping"
)

// RootResolver is the root for graphql-go.
type RootResolver struct {
	DB *gorm.DB
}

// Query returns the query resolver.
func (r *RootResolver) Query() *QueryResolver {
	return &QueryResolver{db: r.DB}
}

// QueryResolver implements Query fields.
type QueryResolver struct {
	db *gorm.DB
}

// StockLevel matches the StockLevel GraphQL type.
type StockLevel struct {
	MSKU       string
	LocationID int32
	Quantity   int32
	Clamped    bool
}

// Product matches the Product GraphQL type.
type Product struct {
	MSKU        string
	Name        string
	Category    *string
	IsActive    bool
	Placeholder bool
}

// ComboComponent matches the ComboComponent GraphQL type.
type ComboComponent struct {
	MSKU     string
	Quantity int32
	Position int32
}

func toProduct(p *catalogEntity.Product) *Product {
	return &Product{
		MSKU:        p.MSKU,
		Name:        p.Name,
		Category:    p.Category,
		IsActive:    p.IsActive,
		Placeholder: p.Placeholder,
	}
}

type CurrentQuantityArgs struct {
	MSKU     string
	Location *string
}

func (r *QueryResolver) CurrentQuantity(ctx context.Context, args CurrentQuantityArgs) (*StockLevel, error) {
	locationCode := config.AppConfig.DefaultLocation
	if args.Location != nil && *args.Location != "" {
		locationCode = *args.Location
	}
	locationID, err := model.LocationIDByCode(r.db, locationCode)
	if err != nil {
		return nil, err
	}
	repo, err := inventoryRepo.NewInventoryRepository(r.db)
	if err != nil {
		return nil, err
	}
	rec, err := repo.Record(args.MSKU, locationID)
	if err != nil {
		return nil, err
	}
	out := &StockLevel{MSKU: args.MSKU, LocationID: int32(locationID)}
	if rec != nil {
		out.Quantity = int32(rec.Quantity)
		out.Clamped = rec.Clamped
	}
	return out, nil
}

func (r *QueryResolver) Inventory(ctx context.Context) ([]StockLevel, error) {
	repo, err := inventoryRepo.NewInventoryRepository(r.db)
	if err != nil {
		return nil, err
	}
	records, err := repo.AllRecords()
	if err != nil {
		return nil, err
	}
	out := make([]StockLevel, 0, len(records))
	for _, rec := range records {
		out = append(out, StockLevel{
			MSKU:       rec.MSKU,
			LocationID: int32(rec.LocationID),
			Quantity:   int32(rec.Quantity),
			Clamped:    rec.Clamped,
		})
	}
	return out, nil
}

type ProductArgs struct {
	MSKU string
}

func (r *QueryResolver) Product(ctx context.Context, args ProductArgs) (*Product, error) {
	p, err := catalogRepo.NewCatalogRepository(r.db).FindByMSKU(args.MSKU)
	if err != nil {
		return nil, nil
	}
	return toProduct(p), nil
}

func (r *QueryResolver) Products(ctx context.Context) ([]*Product, error) {
	all, err := catalogRepo.NewCatalogRepository(r.db).All()
	if err != nil {
		return nil, err
	}
	out := make([]*Product, 0, len(all))
	for i := range all {
		out = append(out, toProduct(&all[i]))
	}
	return out, nil
}

type SearchProductsArgs struct {
	Query string
	Limit *int32
}

func (r *QueryResolver) SearchProducts(ctx context.Context, args SearchProductsArgs) ([]*Product, error) {
	limit := 20
	if args.Limit != nil && *args.Limit > 0 {
		limit = int(*args.Limit)
	}
	repo := catalogRepo.NewCatalogRepository(r.db)

	svc := graphql.GetSearchService()
	if svc.Available() {
		mskus, err := svc.SearchMSKUs(ctx, args.Query, limit)
		if err == nil {
			out := make([]*Product, 0, len(mskus))
			for _, msku := range mskus {
				if p, err := repo.FindByMSKU(msku); err == nil {
					out = append(out, toProduct(p))
				}
			}
			return out, nil
		}
		// Index down, fall back to the database.
	}

	found, err := repo.Search(args.Query, limit)
	if err != nil {
		return nil, err
	}
	out := make([]*Product, 0, len(found))
	for i := range found {
		out = append(out, toProduct(&found[i]))
	}
	return out, nil
}

func (r *QueryResolver) UnmappedSkus(ctx context.Context, args struct{ MarketplaceID int32 }) ([]string, error) {
	var skus []string
	err := r.db.Table("order_items").
		Distinct("order_items.sku").
		Joins("JOIN orders ON orders.order_id = order_items.order_id").
		Where("orders.marketplace_id = ?", args.MarketplaceID).
		Pluck("order_items.sku", &skus).Error
	if err != nil {
		return nil, err
	}
	return mappingRepo.NewMappingRepository(r.db).UnmappedCandidates(uint(args.MarketplaceID), skus)
}

func (r *QueryResolver) ComboComponents(ctx context.Context, args struct {
	MarketplaceID int32
	SKU           string
}) (*[]ComboComponent, error) {
	components, err := mappingRepo.NewMappingRepository(r.db).Components(uint(args.MarketplaceID), args.SKU)
	if err != nil {
		return nil, err
	}
	if components == nil {
		return nil, nil
	}
	out := make([]ComboComponent, 0, len(components))
	for _, comp := range components {
		out = append(out, ComboComponent{
			MSKU:     comp.MSKU,
			Quantity: int32(comp.Quantity),
			Position: int32(comp.Position),
		})
	}
	return &out, nil
}

// ExtensionArgs for _extension(name, args).
type ExtensionArgs struct {
	Name string
	Args *string
}

func (r *QueryResolver) Extension(ctx context.Context, args ExtensionArgs) (*string, error) {
	var m map[string]interface{}
	if args.Args != nil && *args.Args != "" {
		_ = json.Unmarshal([]byte(*args.Args), &m)
	}
	if m == nil {
		m = make(map[string]interface{})
	}
	out, err := registry.Resolve(ctx, args.Name, m)
	if err != nil {
		return nil, err
	}
	b, err := json.Marshal(out)
	if err != nil {
		return nil, err
	}
	s := string(b)
	return &s, nil
}

// NewSchema parses the schema and returns a graphql-go Schema.
func NewSchema(db *gorm.DB) (*gql.Schema, error) {
	config.LoadAppConfig()
	return gql.ParseSchema(graphql.Schema, &RootResolver{DB: db}, gql.UseFieldResolvers())
}

// Handler returns an http.Handler for GraphQL (relay format).
func Handler(schema *gql.Schema) *relay.Handler {
	return &relay.Handler{Schema: schema}
}

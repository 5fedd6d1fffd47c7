package graphql

// Schema is the GraphQL SDL for the warehouse read API.
const Schema = `
schema {
	query: Query
}

type Query {
	# Cached quantity for one product at one location code.
	currentQuantity(msku: String!, location: String): StockLevel!

	# Full cached inventory snapshot.
	inventory: [StockLevel!]!

	product(msku: String!): Product
	products: [Product!]!

	# Full-text product search (elasticsearch when configured,
	# database LIKE otherwise).
	searchProducts(query: String!, limit: Int): [Product!]!

	# Marketplace skus seen in orders with no mapping yet.
	unmappedSkus(marketplaceId: Int!): [String!]!

	# Component lines of a combo listing, in defined order.
	comboComponents(marketplaceId: Int!, sku: String!): [ComboComponent!]

	# Extension escape hatch: resolvers registered from custom packages.
	_extension(name: String!, args: String): String
}

type StockLevel {
	msku: String!
	locationId: Int!
	quantity: Int!
	clamped: Boolean!
}

type Product {
	msku: String!
	name: String!
	category: String
	isActive: Boolean!
	placeholder: Boolean!
}

type ComboComponent {
	msku: String!
	quantity: Int!
	position: Int!
}
`

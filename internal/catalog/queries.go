package catalog

// DefaultPageSize is the product page size used by collection listing and
// search when the caller does not supply one.
const DefaultPageSize = 20

// Every document below is a constant. Caller input only ever travels as a
// GraphQL variable.

const productByHandleQuery = `query getProduct($handle: String!) {
  product(handle: $handle) {
    id
    title
    description
    handle
    vendor
    productType
    tags
    priceRange {
      minVariantPrice {
        amount
        currencyCode
      }
    }
    images(first: 10) {
      edges {
        node {
          id
          url
          altText
          width
          height
        }
      }
    }
    variants(first: 100) {
      edges {
        node {
          id
          title
          price {
            amount
            currencyCode
          }
          availableForSale
          selectedOptions {
            name
            value
          }
          image {
            url
            altText
          }
        }
      }
    }
  }
}`

const collectionByHandleQuery = `query getCollection($handle: String!, $first: Int!) {
  collection(handle: $handle) {
    id
    title
    description
    handle
    products(first: $first) {
      edges {
        node {
          id
          title
          handle
          vendor
          priceRange {
            minVariantPrice {
              amount
              currencyCode
            }
          }
          images(first: 1) {
            edges {
              node {
                url
                altText
              }
            }
          }
        }
      }
      pageInfo {
        hasNextPage
        hasPreviousPage
        startCursor
        endCursor
      }
    }
  }
}`

const searchProductsQuery = `query searchProducts($query: String!, $first: Int!) {
  products(first: $first, query: $query) {
    edges {
      node {
        id
        title
        handle
        vendor
        priceRange {
          minVariantPrice {
            amount
            currencyCode
          }
        }
        images(first: 1) {
          edges {
            node {
              url
              altText
            }
          }
        }
      }
    }
    pageInfo {
      hasNextPage
      hasPreviousPage
    }
  }
}`

const createCartMutation = `mutation createCart($lines: [CartLineInput!]!) {
  cartCreate(input: {lines: $lines}) {
    cart {
      id
      checkoutUrl
      totalQuantity
      cost {
        totalAmount {
          amount
          currencyCode
        }
      }
      lines(first: 100) {
        edges {
          node {
            id
            quantity
            merchandise {
              ... on ProductVariant {
                id
                title
                price {
                  amount
                  currencyCode
                }
                product {
                  title
                  handle
                }
              }
            }
          }
        }
      }
    }
    userErrors {
      field
      message
    }
  }
}`

// Operation is a ready-to-send GraphQL document with its variables.
type Operation struct {
	Name      string
	Query     string
	Variables map[string]any
}

// ProductByHandle builds the product lookup. handle is the only variable.
func ProductByHandle(handle string) Operation {
	return Operation{
		Name:      "getProduct",
		Query:     productByHandleQuery,
		Variables: map[string]any{"handle": handle},
	}
}

// CollectionByHandle builds the collection listing. A first of zero or less
// selects DefaultPageSize.
func CollectionByHandle(handle string, first int) Operation {
	return Operation{
		Name:  "getCollection",
		Query: collectionByHandleQuery,
		Variables: map[string]any{
			"handle": handle,
			"first":  pageSize(first),
		},
	}
}

// SearchProducts builds the free-text product search. query is forwarded
// verbatim; its syntax is the remote API's concern.
func SearchProducts(query string, first int) Operation {
	return Operation{
		Name:  "searchProducts",
		Query: searchProductsQuery,
		Variables: map[string]any{
			"query": query,
			"first": pageSize(first),
		},
	}
}

// CreateCart builds the cart creation mutation with one line per item, in
// order. An empty items slice still sends an (empty) lines array.
func CreateCart(items []CartItem) Operation {
	lines := make([]CartItem, len(items))
	copy(lines, items)
	return Operation{
		Name:      "createCart",
		Query:     createCartMutation,
		Variables: map[string]any{"lines": lines},
	}
}

func pageSize(first int) int {
	if first <= 0 {
		return DefaultPageSize
	}
	return first
}

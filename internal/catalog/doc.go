// Package catalog provides the read-only set of product categories users can subscribe to.
//
// Categories come from the monitor subsystem, either as a plain list of names or scraped from
// a monitor listing page. Names are deduplicated and kept in lexicographic order, which is the
// canonical order used for reaction glyph assignment and for subscription listings.
package catalog

// Package metadata turns coupon metadata documents into normalized rows and
// fetches those documents from IPFS.
package metadata

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/gowebpki/jcs"
	"github.com/tidwall/gjson"
	"gorm.io/datatypes"

	"github.com/pushcola/coupon-indexer/internal/diagnostics"
	"github.com/pushcola/coupon-indexer/internal/identity"
	"github.com/pushcola/coupon-indexer/internal/store"
	"github.com/pushcola/coupon-indexer/internal/store/schema"
)

// DefaultName is the name of a document that does not provide one
const DefaultName = "Untitled"

// Normalizer parses metadata documents. It never rejects a document: every
// delivery produces exactly one TokenMetadata row.
type Normalizer struct {
	diag diagnostics.Sink
}

func NewNormalizer(diag diagnostics.Sink) *Normalizer {
	return &Normalizer{diag: diag}
}

// Normalize parses content as the document documentID and saves the result
// through st. Only store failures are returned.
func (n *Normalizer) Normalize(ctx context.Context, st store.EntityStore, documentID string, content []byte) (*schema.TokenMetadata, error) {
	metadata := &schema.TokenMetadata{
		ID:          documentID,
		Name:        DefaultName,
		Attributes:  []string{},
		ParseStatus: schema.ParseStatusParsed,
	}

	switch {
	case len(bytes.TrimSpace(content)) == 0:
		n.diag.Warning(ctx, "metadata %s: empty content", documentID)
		metadata.ParseStatus = schema.ParseStatusEmpty
		return metadata, n.save(ctx, st, metadata)
	case !gjson.ValidBytes(content):
		n.diag.Error(ctx, "metadata %s: content is not valid JSON", documentID)
		metadata.ParseStatus = schema.ParseStatusInvalid
		return metadata, n.save(ctx, st, metadata)
	}

	doc := gjson.ParseBytes(content)
	metadata.ContentHash = n.contentHash(ctx, documentID, content)
	if bytes.Contains(content, []byte(`\u0000`)) && containsNUL(doc) {
		// jsonb rejects the escaped NUL; the normalized fields are stripped instead
		n.diag.Warning(ctx, "metadata %s: raw content not retained, it contains NUL characters", documentID)
	} else {
		metadata.Raw = datatypes.JSON(content)
	}

	if !doc.IsObject() {
		n.diag.Error(ctx, "metadata %s: top level is %s, not an object", documentID, doc.Type)
		metadata.ParseStatus = schema.ParseStatusNotObject
		return metadata, n.save(ctx, st, metadata)
	}

	if name := n.stringField(ctx, documentID, doc, "name"); name != nil {
		metadata.Name = *name
	}
	metadata.Description = n.stringField(ctx, documentID, doc, "description")
	metadata.Image = n.stringField(ctx, documentID, doc, "image")
	metadata.BgColor = n.stringField(ctx, documentID, doc, "bgColor")
	metadata.TextColor = n.stringField(ctx, documentID, doc, "textColor")
	metadata.QrColor = n.stringField(ctx, documentID, doc, "qrColor")
	metadata.Logo = n.stringField(ctx, documentID, doc, "logo")
	metadata.Visibility = n.stringField(ctx, documentID, doc, "visibility")
	metadata.Category = n.stringField(ctx, documentID, doc, "category")

	if err := n.normalizeLocation(ctx, st, documentID, doc, metadata); err != nil {
		return nil, err
	}
	if err := n.normalizeAttributes(ctx, st, documentID, doc, metadata); err != nil {
		return nil, err
	}

	return metadata, n.save(ctx, st, metadata)
}

func (n *Normalizer) save(ctx context.Context, st store.EntityStore, metadata *schema.TokenMetadata) error {
	if err := st.SaveTokenMetadata(ctx, metadata); err != nil {
		return fmt.Errorf("failed to save token metadata %s: %w", metadata.ID, err)
	}
	return nil
}

func (n *Normalizer) contentHash(ctx context.Context, documentID string, content []byte) *string {
	canonical, err := jcs.Transform(content)
	if err != nil {
		n.diag.Warning(ctx, "metadata %s: cannot canonicalize content: %v", documentID, err)
		return nil
	}
	sum := sha256.Sum256(canonical)
	hash := hex.EncodeToString(sum[:])
	return &hash
}

// stringField returns the value of a string field, recording a warning when
// the key holds another type
func (n *Normalizer) stringField(ctx context.Context, documentID string, doc gjson.Result, key string) *string {
	f := StringField(doc, key)
	if f.State == FieldMismatch {
		n.diag.Warning(ctx, "metadata %s: field %q is %s, expected a string", documentID, key, f.Value.Type)
	}
	return f.String()
}

func (n *Normalizer) numberField(ctx context.Context, documentID string, doc gjson.Result, key string) *float64 {
	f := NumberField(doc, key)
	if f.State == FieldMismatch {
		n.diag.Warning(ctx, "metadata %s: field %q is %s, expected a number", documentID, key, f.Value.Type)
	}
	return f.Float()
}

func (n *Normalizer) normalizeLocation(ctx context.Context, st store.EntityStore, documentID string, doc gjson.Result, metadata *schema.TokenMetadata) error {
	locationID := identity.LocationID(documentID)
	location := &schema.Location{ID: locationID, MetadataID: documentID}

	field := ObjectField(doc, "location")
	switch field.State {
	case FieldTyped:
		obj := field.Value
		location.Address = n.stringField(ctx, documentID, obj, "address")
		location.Address2 = n.stringField(ctx, documentID, obj, "address2")
		location.City = n.stringField(ctx, documentID, obj, "city")
		location.Region = n.stringField(ctx, documentID, obj, "region")
		location.PostalCode = n.stringField(ctx, documentID, obj, "postalCode")
		location.Country = n.stringField(ctx, documentID, obj, "country")
		location.Lat = n.numberField(ctx, documentID, obj, "lat")
		location.Lng = n.numberField(ctx, documentID, obj, "lng")
		countryCode := n.stringField(ctx, documentID, obj, "countryCode")

		if err := n.linkPlaces(ctx, st, location, countryCode); err != nil {
			return err
		}
	case FieldMismatch:
		n.diag.Warning(ctx, "metadata %s: field \"location\" is %s, expected an object", documentID, field.Value.Type)
		return nil
	default:
		// documents written before the location block carry a bare address
		address := n.stringField(ctx, documentID, doc, "address")
		if address == nil {
			return nil
		}
		location.Address = address
	}

	if err := st.SaveLocation(ctx, location); err != nil {
		return fmt.Errorf("failed to save location %s: %w", locationID, err)
	}
	metadata.LocationID = &locationID
	if location.City != nil && strings.TrimSpace(*location.City) != "" {
		city := strings.TrimSpace(*location.City)
		metadata.City = &city
	}
	return nil
}

// linkPlaces resolves the City and Country rows of location and counts the
// document against them when it did not reference them before
func (n *Normalizer) linkPlaces(ctx context.Context, st store.EntityStore, location *schema.Location, countryCode *string) error {
	previous, err := st.GetLocation(ctx, location.ID)
	if err != nil {
		return fmt.Errorf("failed to get location %s: %w", location.ID, err)
	}
	var prevCityID, prevCountryID *string
	if previous != nil {
		prevCityID, prevCountryID = previous.CityID, previous.CountryID
	}

	countryName := trimmed(location.Country)
	if countryName != "" {
		countryID := identity.CountryID(countryName)
		location.CountryID = &countryID

		country, err := st.GetCountry(ctx, countryID)
		if err != nil {
			return fmt.Errorf("failed to get country %s: %w", countryID, err)
		}
		if country == nil {
			country = &schema.Country{ID: countryID, Name: countryName}
		}
		if countryCode != nil && *countryCode != "" {
			country.Code = countryCode
		}
		if !sameRef(prevCountryID, &countryID) {
			country.TotalCoupons++
		}
		if err := st.SaveCountry(ctx, country); err != nil {
			return fmt.Errorf("failed to save country %s: %w", countryID, err)
		}
	}

	cityName := trimmed(location.City)
	if cityName != "" {
		cityID := identity.CityID(cityName, countryName)
		location.CityID = &cityID

		city, err := st.GetCity(ctx, cityID)
		if err != nil {
			return fmt.Errorf("failed to get city %s: %w", cityID, err)
		}
		if city == nil {
			city = &schema.City{ID: cityID, Name: cityName}
		}
		if location.Region != nil {
			city.Region = location.Region
		}
		city.CountryID = location.CountryID
		if !sameRef(prevCityID, &cityID) {
			city.TotalCoupons++
		}
		if err := st.SaveCity(ctx, city); err != nil {
			return fmt.Errorf("failed to save city %s: %w", cityID, err)
		}
	}

	return nil
}

func (n *Normalizer) normalizeAttributes(ctx context.Context, st store.EntityStore, documentID string, doc gjson.Result, metadata *schema.TokenMetadata) error {
	field := ArrayField(doc, "attributes")
	if field.State == FieldMismatch {
		n.diag.Warning(ctx, "metadata %s: field \"attributes\" is %s, expected an array", documentID, field.Value.Type)
	}
	if !field.Typed() {
		return nil
	}

	for i, entry := range field.Value.Array() {
		traitType := StringField(entry, "trait_type")
		value := StringField(entry, "value")
		if !entry.IsObject() || !traitType.Typed() || !value.Typed() {
			n.diag.Warning(ctx, "metadata %s: attribute %d skipped, trait_type and value must be strings", documentID, i)
			continue
		}

		attribute := &schema.Attribute{
			ID:         identity.AttributeID(documentID, i),
			MetadataID: documentID,
			Position:   i,
			TraitType:  *traitType.String(),
			Value:      *value.String(),
		}
		if err := st.SaveAttribute(ctx, attribute); err != nil {
			return fmt.Errorf("failed to save attribute %s: %w", attribute.ID, err)
		}
		metadata.Attributes = append(metadata.Attributes, attribute.ID)
	}
	return nil
}

func trimmed(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}

func sameRef(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

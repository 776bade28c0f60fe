package apollo

import (
	"strconv"
	"strings"

	"github.com/auctiondir/hibid"
)

const (
	// auctioneerPrefix marks graph keys holding company entities.
	auctioneerPrefix = "Auctioneer:"

	// rootQueryKey holds query metadata: result ordering and totalCount.
	rootQueryKey = "ROOT_QUERY"

	// maxResolveDepth bounds reference resolution. The source schema is
	// shallow, so two hops cover every legitimate indirection while
	// guaranteeing cycles are never followed.
	maxResolveDepth = 2
)

// Companies extracts every company entity from the state graph in
// listing shape. Ordering follows the ROOT_QUERY search result refs when
// present, otherwise the document order of the entity keys. The second
// return value is the upstream-reported total count, defaulting to the
// number of records found when the metadata entry is absent.
func Companies(s *State) ([]hibid.CompanyRecord, int, error) {
	byID := make(map[int]map[string]any)
	var orderedKeys []string

	for _, key := range s.Keys() {
		m, ok := s.companyEntity(key)
		if !ok {
			continue
		}
		orderedKeys = append(orderedKeys, key)
		if id := intField(m, "id"); id != nil {
			byID[*id] = m
		}
	}

	if len(orderedKeys) == 0 {
		return nil, 0, hibid.Errorf(hibid.ENODATA, "no company entries in state graph")
	}

	total, orderedIDs := searchMetadata(s)

	var records []hibid.CompanyRecord
	for _, id := range orderedIDs {
		if m, ok := byID[id]; ok {
			records = append(records, formatRecord(s, m))
		}
	}
	if len(records) == 0 {
		// No usable ordering metadata; fall back to document order.
		for _, key := range orderedKeys {
			m, _ := s.Entity(key)
			records = append(records, formatRecord(s, m))
		}
	}

	if total <= 0 {
		total = len(records)
	}
	return records, total, nil
}

// Detail extracts the single company a profile page describes. When
// targetID is known (from the profile URL) only that entity matches;
// otherwise the first entity carrying contact details is taken, and as a
// last resort a ROOT_QUERY auctioneer reference is followed.
func Detail(s *State, targetID *int) (*hibid.CompanyRecord, error) {
	var contactMatch *hibid.CompanyRecord
	found := false

	for _, key := range s.Keys() {
		m, ok := s.companyEntity(key)
		if !ok {
			continue
		}
		found = true

		if targetID != nil {
			if id := intField(m, "id"); id != nil && *id == *targetID {
				rec := formatDetail(s, m)
				return &rec, nil
			}
			continue
		}

		// Pages can cache several auctioneers (e.g. from sidebar
		// auctions); prefer the one carrying detail-level data.
		if contactMatch == nil && (stringField(s, m, "phone") != "" || stringField(s, m, "email") != "") {
			rec := formatDetail(s, m)
			contactMatch = &rec
		}
	}

	if targetID == nil && contactMatch != nil {
		return contactMatch, nil
	}

	// The profiled auctioneer may only be reachable through a ROOT_QUERY
	// reference.
	if rq, ok := s.Entity(rootQueryKey); ok {
		for key, v := range rq {
			if !strings.Contains(strings.ToLower(key), "auctioneer") {
				continue
			}
			m, ok := v.(map[string]any)
			if !ok {
				continue
			}
			ref, ok := m["__ref"].(string)
			if !ok || !strings.HasPrefix(ref, auctioneerPrefix) {
				continue
			}
			if ent, ok := s.Entity(ref); ok {
				rec := formatDetail(s, ent)
				return &rec, nil
			}
		}
	}

	if !found {
		return nil, hibid.Errorf(hibid.ENODATA, "no company entries in state graph")
	}
	return nil, hibid.Errorf(hibid.ENOTFOUND, "company not present in state graph")
}

// companyEntity returns the entity under key when it is company-shaped:
// an Auctioneer-keyed object with at least a name field.
func (s *State) companyEntity(key string) (map[string]any, bool) {
	if !strings.HasPrefix(key, auctioneerPrefix) {
		return nil, false
	}
	m, ok := s.Entity(key)
	if !ok {
		return nil, false
	}
	if _, ok := m["name"]; !ok {
		return nil, false
	}
	return m, true
}

// searchMetadata reads the auctioneerSearch entry under ROOT_QUERY:
// the upstream-reported total count and the ordered result references.
func searchMetadata(s *State) (total int, orderedIDs []int) {
	rq, ok := s.Entity(rootQueryKey)
	if !ok {
		return 0, nil
	}
	for key, v := range rq {
		if !strings.Contains(key, "auctioneerSearch") {
			continue
		}
		m, ok := v.(map[string]any)
		if !ok {
			continue
		}
		if tc, ok := m["totalCount"].(float64); ok {
			total = int(tc)
		}
		if results, ok := m["results"].([]any); ok {
			for _, r := range results {
				ref, ok := r.(map[string]any)
				if !ok {
					continue
				}
				refKey, ok := ref["__ref"].(string)
				if !ok {
					continue
				}
				if id := idFromRefKey(refKey); id != nil {
					orderedIDs = append(orderedIDs, *id)
				}
			}
		}
		return total, orderedIDs
	}
	return 0, nil
}

// formatRecord normalizes a company entity into listing shape. Absent
// string fields become ""; an absent id stays nil.
func formatRecord(s *State, m map[string]any) hibid.CompanyRecord {
	rec := hibid.CompanyRecord{
		CompanyID:  intField(m, "id"),
		Name:       stringField(s, m, "name"),
		Address:    stringField(s, m, "address"),
		City:       stringField(s, m, "city"),
		State:      stringField(s, m, "state"),
		PostalCode: stringField(s, m, "postalCode"),
		Country:    stringField(s, m, "country"),
	}
	rec.Location = hibid.Location(rec.City, rec.State, rec.Country)
	if rec.CompanyID != nil {
		rec.ProfileURL = hibid.ProfileURL(*rec.CompanyID, rec.Name)
	}
	return rec
}

// formatDetail normalizes a company entity into detail shape, adding the
// contact fields the listing shape omits.
func formatDetail(s *State, m map[string]any) hibid.CompanyRecord {
	rec := formatRecord(s, m)
	rec.Phone = stringField(s, m, "phone")
	rec.Email = stringField(s, m, "email")
	rec.Website = stringField(s, m, "internetAddress")
	rec.Fax = stringField(s, m, "fax")
	return rec
}

// resolve follows {"__ref": key} indirections by pure lookup over the
// immutable graph, bounded by depth so cycles terminate.
func (s *State) resolve(v any, depth int) any {
	for i := 0; i < depth; i++ {
		m, ok := v.(map[string]any)
		if !ok {
			return v
		}
		ref, ok := m["__ref"].(string)
		if !ok {
			return v
		}
		next, ok := s.entities[ref]
		if !ok {
			return v
		}
		v = next
	}
	return v
}

// stringField reads a string field, resolving references first. A field
// that resolves to an entity yields that entity's same-named field, so a
// referenced address entity still produces its address string.
func stringField(s *State, m map[string]any, key string) string {
	switch t := s.resolve(m[key], maxResolveDepth).(type) {
	case string:
		return t
	case map[string]any:
		if inner, ok := t[key].(string); ok {
			return inner
		}
	}
	return ""
}

// intField reads an integer field. JSON numbers arrive as float64;
// numeric strings are tolerated. Returns nil rather than zero-filling
// when the field is absent or non-positive.
func intField(m map[string]any, key string) *int {
	switch t := m[key].(type) {
	case float64:
		id := int(t)
		if id > 0 {
			return &id
		}
	case string:
		if id, err := strconv.Atoi(t); err == nil && id > 0 {
			return &id
		}
	}
	return nil
}

// idFromRefKey extracts the numeric id from a reference key like
// "Auctioneer:12345".
func idFromRefKey(key string) *int {
	rest, ok := strings.CutPrefix(key, auctioneerPrefix)
	if !ok {
		return nil
	}
	if id, err := strconv.Atoi(rest); err == nil && id > 0 {
		return &id
	}
	return nil
}

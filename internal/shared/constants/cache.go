package constants

import (
	"fmt"
	"time"
)

// Redis cache keys and TTLs, centralized.
// Key pattern: tickethub:{module}:{operation}:{identifier}:{params?}

const CachePrefix = "tickethub"

// TTL tiers
const (
	TTLStatic      = 6 * time.Hour    // user profiles, rarely-changing data
	TTLSemiStatic  = 1 * time.Hour    // event details
	TTLListing     = 15 * time.Minute // event and ticket-type listings
	TTLDynamic     = 5 * time.Minute  // analytics summaries
	TTLRealtime    = 30 * time.Second // availability remainders (display only)
)

// Events module
const (
	CacheKeyEventsList     = CachePrefix + ":events:list"         // + :page:X:limit:Y:status:Z
	CacheKeyEventsUpcoming = CachePrefix + ":events:upcoming"     // + :limit:X
	CacheKeyEventDetail    = CachePrefix + ":events:detail:uuid:" // + event-id
)

// Ticket types module
const (
	CacheKeyTicketTypesByEvent = CachePrefix + ":tickettypes:event:"        // + event-id
	CacheKeyTicketTypeDetail   = CachePrefix + ":tickettypes:detail:uuid:"  // + ticket-type-id
	CacheKeyTypeAvailability   = CachePrefix + ":tickettypes:availability:" // + ticket-type-id
)

// Analytics module
const (
	CacheKeyAnalyticsEvent  = CachePrefix + ":analytics:event:uuid:" // + event-id
	CacheKeyAnalyticsGlobal = CachePrefix + ":analytics:global"
)

// Invalidation patterns (used with DeletePattern)
const (
	PatternInvalidateEvents      = CachePrefix + ":events:*"
	PatternInvalidateTicketTypes = CachePrefix + ":tickettypes:*"
	PatternInvalidateAnalytics   = CachePrefix + ":analytics:*"
)

func BuildEventListKey(page, limit int, status string) string {
	if status != "" {
		return fmt.Sprintf("%s:page:%d:limit:%d:status:%s", CacheKeyEventsList, page, limit, status)
	}
	return fmt.Sprintf("%s:page:%d:limit:%d", CacheKeyEventsList, page, limit)
}

func BuildEventDetailKey(eventID string) string {
	return CacheKeyEventDetail + eventID
}

func BuildUpcomingEventsKey(limit int) string {
	return fmt.Sprintf("%s:limit:%d", CacheKeyEventsUpcoming, limit)
}

func BuildTicketTypesByEventKey(eventID string) string {
	return CacheKeyTicketTypesByEvent + eventID
}

func BuildTypeAvailabilityKey(ticketTypeID string) string {
	return CacheKeyTypeAvailability + ticketTypeID
}

func BuildAnalyticsEventKey(eventID string) string {
	return CacheKeyAnalyticsEvent + eventID
}

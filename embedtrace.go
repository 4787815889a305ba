// Package embedtrace discovers social-media embeds (Bluesky, Twitter/X,
// TikTok, Instagram, Facebook) referenced inside articles pulled from RSS
// feeds, records each discovery durably with deduplication, and optionally
// quote-posts newly discovered Bluesky posts back to a Bluesky account.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., goquery/, sqlite/, bluesky/).
package embedtrace

package goquery

import "github.com/kmichalik/embedtrace"

// Detectors returns the closed set of platform detectors in a fixed order.
// The resolver serves Bluesky DID lookups and the expander serves TikTok
// short links; either may be nil to disable the corresponding network step.
func Detectors(resolver embedtrace.HandleResolver, expander embedtrace.URLExpander) []embedtrace.Detector {
	return []embedtrace.Detector{
		NewBluesky(resolver),
		NewTwitter(),
		NewTikTok(expander),
		NewInstagram(),
		NewFacebook(),
	}
}

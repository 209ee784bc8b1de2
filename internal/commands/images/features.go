package imagescmd

// FeatureGates exposes runtime toggles for image commands. A nil func counts
// as enabled.
type FeatureGates struct {
	RemoteImagesEnabled func() bool
}

func (g FeatureGates) remoteImagesEnabled() bool {
	if g.RemoteImagesEnabled == nil {
		return true
	}
	return g.RemoteImagesEnabled()
}

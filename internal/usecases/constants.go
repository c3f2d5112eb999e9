package usecases

// Report defaults
const (
	DefaultNearbyRadiusKm = 10.0
	MaxDescriptionLength  = 2000
	MaxRedeemItemLength   = 200
)

// Coordinate bounds
const (
	MinLatitude  = -90
	MaxLatitude  = 90
	MinLongitude = -180
	MaxLongitude = 180
)

// coordinateScale is the fixed-point scale stored for coordinates
const coordinateScale = 7

package packets

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// UnloadRequest is the beacon body. Beacons cannot carry headers, so the
// token travels in the payload (or in ?token=).
type UnloadRequest struct {
	Token string `json:"token"`
}

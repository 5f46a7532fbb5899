package granular

// panGains maps pan in [0, 1] to linear channel gains. Both gains are 1 at
// the center and the nearer channel always stays at unity.
func panGains(pan float64) (gainL, gainR float64) {
	gainL = 2 * (1 - pan)
	gainR = 2 * pan
	if gainL > 1 {
		gainL = 1
	}
	if gainR > 1 {
		gainR = 1
	}
	if gainL < 0 {
		gainL = 0
	}
	if gainR < 0 {
		gainR = 0
	}
	return gainL, gainR
}

package media

// Speed is a playback rate in percent of real time.
type Speed = int

const (
	Quarter    Speed = 25
	Half       Speed = 50
	NormalRate Speed = 100
	OneAndHalf Speed = 150
	Double     Speed = 200
	Quadruple  Speed = 400

	MinSpeed Speed = 10
	MaxSpeed Speed = 1000
)

// SpeedLadder lists the discrete speeds in ascending order.
var SpeedLadder = []Speed{Quarter, Half, NormalRate, OneAndHalf, Double, Quadruple}

// NextSpeed returns the first ladder step above s, or the top step.
func NextSpeed(s Speed) Speed {
	for _, step := range SpeedLadder {
		if step > s {
			return step
		}
	}
	return SpeedLadder[len(SpeedLadder)-1]
}

// PrevSpeed returns the last ladder step below s, or the bottom step.
func PrevSpeed(s Speed) Speed {
	for i := len(SpeedLadder) - 1; i >= 0; i-- {
		if SpeedLadder[i] < s {
			return SpeedLadder[i]
		}
	}
	return SpeedLadder[0]
}

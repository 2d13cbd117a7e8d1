package planets

// element is a Keplerian element at J2000 and its rate per Julian century.
type element struct {
	at, rate float64
}

func (e element) value(T float64) float64 {
	return e.at + e.rate*T
}

// orbit holds the approximate mean elements of one planet, referred to the
// J2000 ecliptic and equinox.
type orbit struct {
	a    element // semi-major axis, AU
	e    element // eccentricity
	i    element // inclination, degrees
	L    element // mean longitude, degrees
	peri element // longitude of perihelion, degrees
	node element // longitude of the ascending node, degrees
}

// JPL "Keplerian Elements for Approximate Positions of the Major Planets",
// table 1 (valid 1800 AD - 2050 AD).
var orbits = map[string]orbit{
	"mercury": {
		a:    element{0.38709927, 0.00000037},
		e:    element{0.20563593, 0.00001906},
		i:    element{7.00497902, -0.00594749},
		L:    element{252.25032350, 149472.67411175},
		peri: element{77.45779628, 0.16047689},
		node: element{48.33076593, -0.12534081},
	},
	"venus": {
		a:    element{0.72333566, 0.00000390},
		e:    element{0.00677672, -0.00004107},
		i:    element{3.39467605, -0.00078890},
		L:    element{181.97909950, 58517.81538729},
		peri: element{131.60246718, 0.00268329},
		node: element{76.67984255, -0.27769418},
	},
	earthMoon: {
		a:    element{1.00000261, 0.00000562},
		e:    element{0.01671123, -0.00004392},
		i:    element{-0.00001531, -0.01294668},
		L:    element{100.46457166, 35999.37244981},
		peri: element{102.93768193, 0.32327364},
		node: element{0, 0},
	},
	"mars": {
		a:    element{1.52371034, 0.00001847},
		e:    element{0.09339410, 0.00007882},
		i:    element{1.84969142, -0.00813131},
		L:    element{-4.55343205, 19140.30268499},
		peri: element{-23.94362959, 0.44441088},
		node: element{49.55953891, -0.29257343},
	},
	"jupiter": {
		a:    element{5.20288700, -0.00011607},
		e:    element{0.04838624, -0.00013253},
		i:    element{1.30439695, -0.00183714},
		L:    element{34.39644051, 3034.74612775},
		peri: element{14.72847983, 0.21252668},
		node: element{100.47390909, 0.20469106},
	},
	"saturn": {
		a:    element{9.53667594, -0.00125060},
		e:    element{0.05386179, -0.00050991},
		i:    element{2.48599187, 0.00193609},
		L:    element{49.95424423, 1222.49362201},
		peri: element{92.59887831, -0.41897216},
		node: element{113.66242448, -0.28867794},
	},
	"uranus": {
		a:    element{19.18916464, -0.00196176},
		e:    element{0.04725744, -0.00004397},
		i:    element{0.77263783, -0.00242939},
		L:    element{313.23810451, 428.48202785},
		peri: element{170.95427630, 0.40805281},
		node: element{74.01692503, 0.04240589},
	},
	"neptune": {
		a:    element{30.06992276, 0.00026291},
		e:    element{0.00859048, 0.00005105},
		i:    element{1.77004347, 0.00035372},
		L:    element{-55.12002969, 218.45945325},
		peri: element{44.96476227, -0.32241464},
		node: element{131.78422574, -0.00508664},
	},
	"pluto": {
		a:    element{39.48211675, -0.00031596},
		e:    element{0.24882730, 0.00005170},
		i:    element{17.14001206, 0.00004818},
		L:    element{238.92903833, 145.20780515},
		peri: element{224.06891629, -0.04062942},
		node: element{110.30393684, -0.01183482},
	},
}

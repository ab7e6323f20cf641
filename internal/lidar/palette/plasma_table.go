package palette

import "gonum.org/v1/gonum/spatial/r3"

// plasmaTable holds the 256 control colours of the intensity ramp. The end
// rows are matplotlib's plasma end points. Interior rows come from a
// degree-6 fit of plasma and sit within about 1e-2 of it per channel.
var plasmaTable = [RampSize]r3.Vec{
	{X: 0.050383, Y: 0.029803, Z: 0.527975},
	{X: 0.067227, Y: 0.024159, Z: 0.546343},
	{X: 0.075641, Y: 0.024768, Z: 0.549431},
	{X: 0.083976, Y: 0.025177, Z: 0.552596},
	{X: 0.092235, Y: 0.025400, Z: 0.555826},
	{X: 0.100420, Y: 0.025452, Z: 0.559113},
	{X: 0.108532, Y: 0.025345, Z: 0.562449},
	{X: 0.116574, Y: 0.025092, Z: 0.565825},
	{X: 0.124547, Y: 0.024707, Z: 0.569232},
	{X: 0.132453, Y: 0.024200, Z: 0.572662},
	{X: 0.140294, Y: 0.023584, Z: 0.576109},
	{X: 0.148072, Y: 0.022869, Z: 0.579564},
	{X: 0.155787, Y: 0.022067, Z: 0.583020},
	{X: 0.163443, Y: 0.021188, Z: 0.586472},
	{X: 0.171039, Y: 0.020242, Z: 0.589911},
	{X: 0.178578, Y: 0.019239, Z: 0.593333},
	{X: 0.186061, Y: 0.018188, Z: 0.596730},
	{X: 0.193490, Y: 0.017098, Z: 0.600098},
	{X: 0.200865, Y: 0.015977, Z: 0.603431},
	{X: 0.208189, Y: 0.014835, Z: 0.606723},
	{X: 0.215461, Y: 0.013678, Z: 0.609970},
	{X: 0.222685, Y: 0.012515, Z: 0.613167},
	{X: 0.229859, Y: 0.011352, Z: 0.616309},
	{X: 0.236987, Y: 0.010198, Z: 0.619393},
	{X: 0.244068, Y: 0.009057, Z: 0.622413},
	{X: 0.251104, Y: 0.007937, Z: 0.625366},
	{X: 0.258096, Y: 0.006845, Z: 0.628249},
	{X: 0.265044, Y: 0.005784, Z: 0.631058},
	{X: 0.271950, Y: 0.004762, Z: 0.633790},
	{X: 0.278815, Y: 0.003783, Z: 0.636441},
	{X: 0.285639, Y: 0.002853, Z: 0.639010},
	{X: 0.292423, Y: 0.001975, Z: 0.641492},
	{X: 0.299168, Y: 0.001155, Z: 0.643887},
	{X: 0.305875, Y: 0.000396, Z: 0.646191},
	{X: 0.312544, Y: 0.000000, Z: 0.648402},
	{X: 0.319176, Y: 0.000000, Z: 0.650518},
	{X: 0.325772, Y: 0.000000, Z: 0.652539},
	{X: 0.332332, Y: 0.000000, Z: 0.654461},
	{X: 0.338857, Y: 0.000000, Z: 0.656283},
	{X: 0.345347, Y: 0.000000, Z: 0.658005},
	{X: 0.351804, Y: 0.000000, Z: 0.659624},
	{X: 0.358227, Y: 0.000000, Z: 0.661141},
	{X: 0.364616, Y: 0.000000, Z: 0.662553},
	{X: 0.370973, Y: 0.000000, Z: 0.663861},
	{X: 0.377298, Y: 0.000000, Z: 0.665063},
	{X: 0.383591, Y: 0.000000, Z: 0.666159},
	{X: 0.389853, Y: 0.000000, Z: 0.667149},
	{X: 0.396083, Y: 0.000000, Z: 0.668032},
	{X: 0.402283, Y: 0.000000, Z: 0.668809},
	{X: 0.408452, Y: 0.000000, Z: 0.669479},
	{X: 0.414592, Y: 0.000000, Z: 0.670042},
	{X: 0.420701, Y: 0.000667, Z: 0.670498},
	{X: 0.426781, Y: 0.001579, Z: 0.670849},
	{X: 0.432831, Y: 0.002591, Z: 0.671093},
	{X: 0.438852, Y: 0.003705, Z: 0.671232},
	{X: 0.444844, Y: 0.004920, Z: 0.671266},
	{X: 0.450808, Y: 0.006236, Z: 0.671195},
	{X: 0.456742, Y: 0.007653, Z: 0.671021},
	{X: 0.462649, Y: 0.009171, Z: 0.670744},
	{X: 0.468527, Y: 0.010790, Z: 0.670366},
	{X: 0.474376, Y: 0.012508, Z: 0.669886},
	{X: 0.480198, Y: 0.014325, Z: 0.669306},
	{X: 0.485991, Y: 0.016240, Z: 0.668628},
	{X: 0.491757, Y: 0.018254, Z: 0.667852},
	{X: 0.497495, Y: 0.020364, Z: 0.666979},
	{X: 0.503205, Y: 0.022569, Z: 0.666011},
	{X: 0.508887, Y: 0.024869, Z: 0.664949},
	{X: 0.514541, Y: 0.027263, Z: 0.663794},
	{X: 0.520168, Y: 0.029748, Z: 0.662548},
	{X: 0.525766, Y: 0.032325, Z: 0.661212},
	{X: 0.531338, Y: 0.034991, Z: 0.659788},
	{X: 0.536881, Y: 0.037745, Z: 0.658278},
	{X: 0.542397, Y: 0.040585, Z: 0.656682},
	{X: 0.547885, Y: 0.043510, Z: 0.655002},
	{X: 0.553345, Y: 0.046519, Z: 0.653241},
	{X: 0.558777, Y: 0.049609, Z: 0.651400},
	{X: 0.564182, Y: 0.052779, Z: 0.649479},
	{X: 0.569558, Y: 0.056027, Z: 0.647483},
	{X: 0.574907, Y: 0.059351, Z: 0.645411},
	{X: 0.580227, Y: 0.062750, Z: 0.643265},
	{X: 0.585520, Y: 0.066222, Z: 0.641048},
	{X: 0.590784, Y: 0.069764, Z: 0.638762},
	{X: 0.596020, Y: 0.073375, Z: 0.636407},
	{X: 0.601228, Y: 0.077054, Z: 0.633986},
	{X: 0.606407, Y: 0.080797, Z: 0.631501},
	{X: 0.611558, Y: 0.084603, Z: 0.628953},
	{X: 0.616680, Y: 0.088470, Z: 0.626345},
	{X: 0.621774, Y: 0.092396, Z: 0.623678},
	{X: 0.626838, Y: 0.096378, Z: 0.620954},
	{X: 0.631874, Y: 0.100416, Z: 0.618175},
	{X: 0.636881, Y: 0.104507, Z: 0.615342},
	{X: 0.641859, Y: 0.108649, Z: 0.612458},
	{X: 0.646808, Y: 0.112839, Z: 0.609524},
	{X: 0.651727, Y: 0.117077, Z: 0.606542},
	{X: 0.656617, Y: 0.121359, Z: 0.603514},
	{X: 0.661478, Y: 0.125685, Z: 0.600442},
	{X: 0.666308, Y: 0.130051, Z: 0.597327},
	{X: 0.671110, Y: 0.134456, Z: 0.594171},
	{X: 0.675881, Y: 0.138899, Z: 0.590976},
	{X: 0.680623, Y: 0.143376, Z: 0.587744},
	{X: 0.685334, Y: 0.147887, Z: 0.584476},
	{X: 0.690015, Y: 0.152429, Z: 0.581175},
	{X: 0.694667, Y: 0.157000, Z: 0.577841},
	{X: 0.699287, Y: 0.161599, Z: 0.574476},
	{X: 0.703878, Y: 0.166224, Z: 0.571082},
	{X: 0.708437, Y: 0.170873, Z: 0.567661},
	{X: 0.712967, Y: 0.175545, Z: 0.564213},
	{X: 0.717465, Y: 0.180237, Z: 0.560741},
	{X: 0.721933, Y: 0.184948, Z: 0.557247},
	{X: 0.726369, Y: 0.189676, Z: 0.553730},
	{X: 0.730775, Y: 0.194420, Z: 0.550194},
	{X: 0.735149, Y: 0.199179, Z: 0.546639},
	{X: 0.739492, Y: 0.203950, Z: 0.543067},
	{X: 0.743804, Y: 0.208732, Z: 0.539479},
	{X: 0.748085, Y: 0.213525, Z: 0.535877},
	{X: 0.752334, Y: 0.218325, Z: 0.532261},
	{X: 0.756551, Y: 0.223133, Z: 0.528633},
	{X: 0.760737, Y: 0.227947, Z: 0.524994},
	{X: 0.764891, Y: 0.232765, Z: 0.521345},
	{X: 0.769013, Y: 0.237587, Z: 0.517688},
	{X: 0.773104, Y: 0.242411, Z: 0.514023},
	{X: 0.777162, Y: 0.247236, Z: 0.510351},
	{X: 0.781188, Y: 0.252062, Z: 0.506675},
	{X: 0.785182, Y: 0.256886, Z: 0.502993},
	{X: 0.789144, Y: 0.261709, Z: 0.499309},
	{X: 0.793074, Y: 0.266530, Z: 0.495621},
	{X: 0.796971, Y: 0.271347, Z: 0.491932},
	{X: 0.800836, Y: 0.276160, Z: 0.488242},
	{X: 0.804669, Y: 0.280969, Z: 0.484552},
	{X: 0.808469, Y: 0.285771, Z: 0.480862},
	{X: 0.812236, Y: 0.290568, Z: 0.477174},
	{X: 0.815971, Y: 0.295358, Z: 0.473487},
	{X: 0.819673, Y: 0.300141, Z: 0.469803},
	{X: 0.823343, Y: 0.304917, Z: 0.466122},
	{X: 0.826979, Y: 0.309685, Z: 0.462445},
	{X: 0.830583, Y: 0.314444, Z: 0.458773},
	{X: 0.834153, Y: 0.319196, Z: 0.455105},
	{X: 0.837691, Y: 0.323938, Z: 0.451442},
	{X: 0.841196, Y: 0.328672, Z: 0.447785},
	{X: 0.844667, Y: 0.333398, Z: 0.444133},
	{X: 0.848106, Y: 0.338114, Z: 0.440488},
	{X: 0.851511, Y: 0.342822, Z: 0.436850},
	{X: 0.854883, Y: 0.347521, Z: 0.433218},
	{X: 0.858221, Y: 0.352211, Z: 0.429593},
	{X: 0.861527, Y: 0.356893, Z: 0.425976},
	{X: 0.864798, Y: 0.361567, Z: 0.422366},
	{X: 0.868037, Y: 0.366233, Z: 0.418764},
	{X: 0.871241, Y: 0.370891, Z: 0.415169},
	{X: 0.874412, Y: 0.375543, Z: 0.411582},
	{X: 0.877549, Y: 0.380188, Z: 0.408003},
	{X: 0.880653, Y: 0.384827, Z: 0.404432},
	{X: 0.883722, Y: 0.389460, Z: 0.400868},
	{X: 0.886758, Y: 0.394088, Z: 0.397313},
	{X: 0.889759, Y: 0.398712, Z: 0.393765},
	{X: 0.892727, Y: 0.403333, Z: 0.390224},
	{X: 0.895660, Y: 0.407950, Z: 0.386691},
	{X: 0.898559, Y: 0.412566, Z: 0.383166},
	{X: 0.901423, Y: 0.417180, Z: 0.379647},
	{X: 0.904253, Y: 0.421794, Z: 0.376136},
	{X: 0.907049, Y: 0.426408, Z: 0.372632},
	{X: 0.909809, Y: 0.431024, Z: 0.369135},
	{X: 0.912535, Y: 0.435642, Z: 0.365644},
	{X: 0.915225, Y: 0.440263, Z: 0.362159},
	{X: 0.917881, Y: 0.444889, Z: 0.358681},
	{X: 0.920501, Y: 0.449520, Z: 0.355208},
	{X: 0.923086, Y: 0.454158, Z: 0.351741},
	{X: 0.925635, Y: 0.458804, Z: 0.348279},
	{X: 0.928148, Y: 0.463458, Z: 0.344823},
	{X: 0.930625, Y: 0.468123, Z: 0.341371},
	{X: 0.933066, Y: 0.472799, Z: 0.337924},
	{X: 0.935470, Y: 0.477487, Z: 0.334481},
	{X: 0.937838, Y: 0.482189, Z: 0.331042},
	{X: 0.940169, Y: 0.486905, Z: 0.327608},
	{X: 0.942463, Y: 0.491638, Z: 0.324177},
	{X: 0.944719, Y: 0.496388, Z: 0.320749},
	{X: 0.946938, Y: 0.501157, Z: 0.317324},
	{X: 0.949119, Y: 0.505946, Z: 0.313903},
	{X: 0.951262, Y: 0.510756, Z: 0.310485},
	{X: 0.953366, Y: 0.515589, Z: 0.307069},
	{X: 0.955431, Y: 0.520445, Z: 0.303656},
	{X: 0.957457, Y: 0.525326, Z: 0.300245},
	{X: 0.959444, Y: 0.530234, Z: 0.296837},
	{X: 0.961390, Y: 0.535169, Z: 0.293431},
	{X: 0.963297, Y: 0.540133, Z: 0.290028},
	{X: 0.965162, Y: 0.545127, Z: 0.286627},
	{X: 0.966986, Y: 0.550152, Z: 0.283228},
	{X: 0.968769, Y: 0.555209, Z: 0.279832},
	{X: 0.970509, Y: 0.560300, Z: 0.276439},
	{X: 0.972207, Y: 0.565425, Z: 0.273049},
	{X: 0.973861, Y: 0.570586, Z: 0.269661},
	{X: 0.975472, Y: 0.575784, Z: 0.266277},
	{X: 0.977039, Y: 0.581019, Z: 0.262897},
	{X: 0.978560, Y: 0.586294, Z: 0.259521},
	{X: 0.980037, Y: 0.591607, Z: 0.256150},
	{X: 0.981467, Y: 0.596962, Z: 0.252784},
	{X: 0.982850, Y: 0.602357, Z: 0.249423},
	{X: 0.984186, Y: 0.607795, Z: 0.246069},
	{X: 0.985473, Y: 0.613275, Z: 0.242722},
	{X: 0.986712, Y: 0.618798, Z: 0.239384},
	{X: 0.987901, Y: 0.624366, Z: 0.236053},
	{X: 0.989039, Y: 0.629978, Z: 0.232733},
	{X: 0.990126, Y: 0.635634, Z: 0.229424},
	{X: 0.991161, Y: 0.641336, Z: 0.226127},
	{X: 0.992143, Y: 0.647083, Z: 0.222843},
	{X: 0.993070, Y: 0.652876, Z: 0.219574},
	{X: 0.993943, Y: 0.658714, Z: 0.216321},
	{X: 0.994759, Y: 0.664598, Z: 0.213086},
	{X: 0.995518, Y: 0.670528, Z: 0.209870},
	{X: 0.996219, Y: 0.676502, Z: 0.206675},
	{X: 0.996861, Y: 0.682521, Z: 0.203503},
	{X: 0.997442, Y: 0.688585, Z: 0.200356},
	{X: 0.997962, Y: 0.694692, Z: 0.197236},
	{X: 0.998419, Y: 0.700843, Z: 0.194146},
	{X: 0.998811, Y: 0.707036, Z: 0.191088},
	{X: 0.999138, Y: 0.713270, Z: 0.188064},
	{X: 0.999399, Y: 0.719544, Z: 0.185077},
	{X: 0.999591, Y: 0.725857, Z: 0.182129},
	{X: 0.999713, Y: 0.732207, Z: 0.179225},
	{X: 0.999764, Y: 0.738594, Z: 0.176367},
	{X: 0.999743, Y: 0.745014, Z: 0.173558},
	{X: 0.999647, Y: 0.751467, Z: 0.170801},
	{X: 0.999475, Y: 0.757950, Z: 0.168101},
	{X: 0.999226, Y: 0.764462, Z: 0.165461},
	{X: 0.998897, Y: 0.770999, Z: 0.162885},
	{X: 0.998487, Y: 0.777558, Z: 0.160376},
	{X: 0.997994, Y: 0.784139, Z: 0.157941},
	{X: 0.997416, Y: 0.790736, Z: 0.155582},
	{X: 0.996752, Y: 0.797348, Z: 0.153305},
	{X: 0.995998, Y: 0.803970, Z: 0.151114},
	{X: 0.995154, Y: 0.810600, Z: 0.149015},
	{X: 0.994217, Y: 0.817233, Z: 0.147013},
	{X: 0.993184, Y: 0.823865, Z: 0.145114},
	{X: 0.992054, Y: 0.830493, Z: 0.143322},
	{X: 0.990825, Y: 0.837110, Z: 0.141645},
	{X: 0.989493, Y: 0.843714, Z: 0.140088},
	{X: 0.988057, Y: 0.850299, Z: 0.138657},
	{X: 0.986514, Y: 0.856859, Z: 0.137360},
	{X: 0.984861, Y: 0.863389, Z: 0.136203},
	{X: 0.983096, Y: 0.869884, Z: 0.135194},
	{X: 0.981216, Y: 0.876337, Z: 0.134339},
	{X: 0.979219, Y: 0.882742, Z: 0.133647},
	{X: 0.977101, Y: 0.889092, Z: 0.133125},
	{X: 0.974860, Y: 0.895380, Z: 0.132782},
	{X: 0.972493, Y: 0.901600, Z: 0.132626},
	{X: 0.969997, Y: 0.907744, Z: 0.132665},
	{X: 0.967367, Y: 0.913804, Z: 0.132909},
	{X: 0.964603, Y: 0.919772, Z: 0.133368},
	{X: 0.961699, Y: 0.925639, Z: 0.134050},
	{X: 0.958653, Y: 0.931397, Z: 0.134965},
	{X: 0.955462, Y: 0.937036, Z: 0.136125},
	{X: 0.952121, Y: 0.942547, Z: 0.137539},
	{X: 0.948627, Y: 0.947921, Z: 0.139218},
	{X: 0.944977, Y: 0.953147, Z: 0.141173},
	{X: 0.941167, Y: 0.958214, Z: 0.143416},
	{X: 0.937193, Y: 0.963112, Z: 0.145960},
	{X: 0.940015, Y: 0.975158, Z: 0.131326},
}

package testevents

// Masses and widths in GeV.
const (
	higgsMass   = 125.0
	higgsSigma  = 1.0 // detector resolution, the natural width is negligible
	zMass       = 91.1876
	zWidth      = 2.4952
	minZStar    = 12.0
	electronM   = 0.000511
	muonM       = 0.10566
	zzThreshold = 2 * zMass
)

// Event shape.
const (
	meanHiggsPt     = 25.0
	meanZZPt        = 15.0
	meanZZExcess    = 60.0 // mean of m4l above the two Z masses
	maxRapidity     = 2.5
	extraLeptonProb = 0.2
	meanJets        = 1.2
	minJetPt        = 30.0
	meanJetPtExcess = 25.0
	negWeightProb   = 0.08
	dataHiggsFrac   = 0.3
	duplicateProb   = 0.02
	maxAttempts     = 100
)

// Reconstruction quality.
const (
	sigmaDxy       = 0.01
	sigmaDz        = 0.02
	sigmaSIP       = 1.2
	meanRelIso     = 0.06
	sigmaDeltaSC   = 0.01
	mvaIsoEff      = 0.95
	looseIDEff     = 0.98
	trackerOnlyEff = 0.05
)

// Run numbers of generated events.
const (
	mcRun        = 1
	dataFirstRun = 315257
	lumisPerRun  = 500
	eventsPerLS  = 100
)

// HLT paths emulated on generated events.
const (
	pathSingleEle = "Ele32_WPTight_Gsf"
	pathSingleMu  = "IsoMu24"
	pathDoubleEle = "Ele23_Ele12_CaloIdL_TrackIdL_IsoVL"
	pathDoubleMu  = "Mu17_TrkIsoVVL_Mu8_TrkIsoVVL_DZ_Mass3p8"
	pathMuEle     = "Mu8_TrkIsoVVL_Ele23_CaloIdL_TrackIdL_IsoVL_DZ"
)

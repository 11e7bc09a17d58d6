package prescription

// VagalProtocol is the down-regulation routine that replaces loading on a
// RED day.
type VagalProtocol struct {
	Name  string   `json:"name"`
	Steps []string `json:"steps"`
}

// VagalSlotName is stored in the first exercise slot when the protocol is run.
const VagalSlotName = "Protocolo Vagal"

func DefaultVagalProtocol() *VagalProtocol {
	return &VagalProtocol{
		Name: VagalSlotName,
		Steps: []string{
			"Posicionar al paciente en decúbito supino cómodo o posición sedente segura.",
			"Iniciar respiración 4-7-8: inhalar por la nariz 4 s, retener 7 s, exhalar por la boca 8 s.",
			"Mantener de 10 a 15 minutos en ambiente tranquilo.",
			"Monitorear la reducción de la frecuencia cardíaca y consultar el bienestar general.",
		},
	}
}

// SessionGuidelines is the standard operating procedure for every supervised
// training session.
type SessionGuidelines struct {
	WarmUp    string `json:"warm_up"`
	Rest      string `json:"rest"`
	HeartRate string `json:"heart_rate"`
	Cadence   string `json:"cadence"`
}

func DefaultSessionGuidelines() SessionGuidelines {
	return SessionGuidelines{
		WarmUp:    "5-10 min aeróbico ligero más movilidad articular dinámica de todo el cuerpo.",
		Rest:      "2 minutos estrictos entre series de fuerza.",
		HeartRate: "Tomar la frecuencia cardíaca en cuello o muñeca durante 15 segundos y multiplicar x4.",
		Cadence:   "Controlada 2-0-2-0: 2 s excéntrica, sin pausa, 2 s concéntrica.",
	}
}

// RecoveryGuidance is shown on non-training days.
const RecoveryGuidance = "Día de recuperación pasiva. No corresponde sesión de fuerza; " +
	"el reporte matutino queda registrado para el análisis de recuperación longitudinal."

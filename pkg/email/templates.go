package email

import (
	"fmt"
	"html"
	"strings"
)

// RedAlertData describes a RED self-report for the clinical team.
type RedAlertData struct {
	PatientID       string
	Cohort          string
	Arm             string
	ReportDate      string
	Fatigue         int
	MaxPain         int
	PainZones       string
	SleepEfficiency float64
	AppName         string
}

// BuildRedAlertEmail creates the staff notification sent when a patient's
// self-report is classified RED.
func BuildRedAlertEmail(to []string, data RedAlertData) Message {
	appName := data.AppName
	if appName == "" {
		appName = "DTx Oncología"
	}

	subject := fmt.Sprintf("[%s] ALERTA ROJA: paciente %s (%s)", appName, data.PatientID, data.ReportDate)

	textBody := fmt.Sprintf(`Alerta roja en el auto-reporte diario.

Paciente: %s
Cohorte: %s
Brazo: %s
Fecha: %s

Fatiga: %d/10
Dolor máximo: %d/10
Zonas: %s
Eficiencia de sueño: %.1f%%

Entrenamiento de fuerza bloqueado. Aplicar protocolo vagal y evaluar al paciente.

%s`,
		data.PatientID, data.Cohort, data.Arm, data.ReportDate,
		data.Fatigue, data.MaxPain, data.PainZones, data.SleepEfficiency, appName)

	rows := [][2]string{
		{"Paciente", data.PatientID},
		{"Cohorte", data.Cohort},
		{"Brazo", data.Arm},
		{"Fecha", data.ReportDate},
		{"Fatiga", fmt.Sprintf("%d/10", data.Fatigue)},
		{"Dolor máximo", fmt.Sprintf("%d/10", data.MaxPain)},
		{"Zonas", data.PainZones},
		{"Eficiencia de sueño", fmt.Sprintf("%.1f%%", data.SleepEfficiency)},
	}
	var table strings.Builder
	for _, r := range rows {
		fmt.Fprintf(&table, `<tr><td style="padding: 4px 12px; color: #6b7280;">%s</td><td style="padding: 4px 12px;"><strong>%s</strong></td></tr>`,
			html.EscapeString(r[0]), html.EscapeString(r[1]))
	}

	htmlBody := fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
</head>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
    <h2 style="color: #dc2626;">Alerta roja en el auto-reporte diario</h2>
    <table style="border-collapse: collapse; margin: 20px 0;">%s</table>
    <p style="background-color: #fef2f2; padding: 10px 15px; border-radius: 4px;">Entrenamiento de fuerza bloqueado. Aplicar protocolo vagal y evaluar al paciente.</p>
    <p style="color: #6b7280; font-size: 14px; margin-top: 30px;">%s</p>
</body>
</html>`,
		table.String(), html.EscapeString(appName))

	return Message{
		To:       to,
		Subject:  subject,
		TextBody: textBody,
		HTMLBody: htmlBody,
		Headers:  map[string]string{"X-Priority": "1"},
	}
}

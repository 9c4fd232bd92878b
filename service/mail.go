package service

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// Notifier delivers owner-facing mail. Delivery is best-effort: Send
// reports success as a bool and never blocks an access decision.
type Notifier interface {
	Send(to, subject, body string) bool
}

// Mailer is the SMTP Notifier. With mail disabled in config it logs
// the message and reports failed delivery, which ends up on the
// attempt record.
type Mailer struct {
	Enabled  bool
	Host     string
	Port     int
	Sender   string
	Password string
}

func NewMailer() *Mailer {
	return &Mailer{
		Enabled:  viper.GetBool("mail.enabled"),
		Host:     viper.GetString("mail.host"),
		Port:     viper.GetInt("mail.port"),
		Sender:   viper.GetString("mail.sender"),
		Password: viper.GetString("mail.password"),
	}
}

func (m *Mailer) Send(to, subject, body string) bool {
	if !m.Enabled {
		zap.L().Info("Mail disabled, dropping message",
			zap.String("to", to),
			zap.String("subject", subject))
		return false
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.Sender)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body)

	d := gomail.NewDialer(m.Host, m.Port, m.Sender, m.Password)

	if err := d.DialAndSend(msg); err != nil {
		zap.L().Error("Failed to send mail",
			zap.Error(err),
			zap.String("to", to),
			zap.String("subject", subject))
		return false
	}

	return true
}

func accessCodeMail(code string) (subject, body string) {
	subject = "File access authorization required"
	body = fmt.Sprintf("Someone is requesting access to your file.<br><br>"+
		"Share this one-time code with them if you approve:<br>"+
		"<b style='font-size:24px;letter-spacing:6px'>%s</b><br><br>"+
		"The code authorizes a single attempt and expires in 10 minutes. "+
		"You will get another alert when the file is accessed.", code)
	return
}

// ResetCodeMail is exported for the forgot-password handler
func ResetCodeMail(code string) (subject, body string) {
	subject = "Password reset code"
	body = fmt.Sprintf("You requested to reset your password.<br><br>"+
		"Your one-time code:<br>"+
		"<b style='font-size:24px;letter-spacing:6px'>%s</b><br><br>"+
		"It expires in 10 minutes. If you didn't request this, ignore this mail.", code)
	return
}

func authorizedAlertMail(filename string, at time.Time) (subject, body string) {
	subject = "File access alert - authorized access"
	body = fmt.Sprintf("Your file <b>%s</b> was accessed with the correct password "+
		"after code verification.<br><br>Time: %s<br>Served: real file<br><br>"+
		"No action required.", filename, at.UTC().Format("2006-01-02 15:04 UTC"))
	return
}

func intrusionAlertMail(filename string, at time.Time, verificationCode string) (subject, body string) {
	subject = "INTRUSION ALERT - wrong password used"
	body = fmt.Sprintf("Someone passed code verification for <b>%s</b> but supplied a "+
		"wrong password. They received the decoy file and cannot tell it from a "+
		"successful download; your real file was not released.<br><br>"+
		"Time: %s<br>Verification code: <b>%s</b><br><br>"+
		"Check your access log and block the share link if needed.",
		filename, at.UTC().Format("2006-01-02 15:04 UTC"), verificationCode)
	return
}

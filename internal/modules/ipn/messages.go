package ipn

import (
	"context"
	"fmt"

	"modpaypal/internal/domain"

	"gorm.io/datatypes"
)

// alertAdmin sends "PAYPAL ERROR: <reason>" from the main admin to itself.
func (s *Service) alertAdmin(ctx context.Context, ic *ipnContext, reason string) {
	s.loggerf("level=warn msg=paypal ipn alert txn_id=%s reason=%q", ic.n.Get("txn_id"), reason)
	if ic.result.Reason == "" {
		ic.result.Reason = reason
	}

	admin := s.mainAdmin(ctx)
	if admin == nil {
		s.loggerf("level=error msg=no site admin to alert reason=%q", reason)
		return
	}
	body := fmt.Sprintf("%s:  Transaction failed.\n\n%s\n\n%s", s.opts.SiteName, reason, ic.n.Dump())
	s.send(domain.Message{
		UserFrom:    admin.ID,
		UserTo:      admin.ID,
		Name:        domain.MessagePaymentError,
		Subject:     "PAYPAL ERROR: " + reason,
		FullMessage: body,
		Data:        datatypes.JSONMap{"txn_id": ic.n.Get("txn_id"), "reason": reason},
	})
}

func (s *Service) notifyPending(ctx context.Context, ic *ipnContext) {
	from := domain.SupportUserID
	if admin := s.mainAdmin(ctx); admin != nil {
		from = admin.ID
	}
	s.send(domain.Message{
		UserFrom:    from,
		UserTo:      ic.user.ID,
		Name:        domain.MessagePaymentPending,
		Subject:     s.opts.SiteName + ": PayPal payment pending",
		FullMessage: "Your payment is pending.",
		Data:        s.messageData(ic),
	})
}

// notifyRecorded messages the student, the course teacher and the admins
// according to the instance mail flags.
func (s *Service) notifyRecorded(ctx context.Context, ic *ipnContext, t *domain.Transaction) {
	inst, user := ic.instance, ic.user

	if s.status != nil {
		status := StatusPending
		if t.IsCompleted() {
			status = StatusCompleted
		}
		s.status.PublishStatus(user.ID, inst.ID, status)
	}

	teacher, err := s.courses.PrimaryTeacher(ctx, ic.course.ID)
	if err != nil {
		s.loggerf("level=error msg=teacher lookup failed course_id=%d err=%v", ic.course.ID, err)
		teacher = nil
	}

	subject := s.opts.SiteName + ": PayPal payment completed"
	body := "Thank you for completing a payment via PayPal."
	data := s.messageData(ic)

	if inst.MailStudents {
		from := domain.SupportUserID
		if teacher != nil {
			from = teacher.ID
		}
		s.send(domain.Message{UserFrom: from, UserTo: user.ID, Name: domain.MessagePaymentCompleted, Subject: subject, FullMessage: body, Data: data})
	}

	if inst.MailTeachers && teacher != nil {
		s.send(domain.Message{UserFrom: user.ID, UserTo: teacher.ID, Name: domain.MessagePaymentCompleted, Subject: subject, FullMessage: s.staffBody(ic), Data: data})
	}

	if inst.MailAdmins {
		admins, err := s.users.ListAdmins(ctx)
		if err != nil {
			s.loggerf("level=error msg=admin lookup failed err=%v", err)
			return
		}
		for _, admin := range admins {
			s.send(domain.Message{UserFrom: user.ID, UserTo: admin.ID, Name: domain.MessagePaymentCompleted, Subject: subject, FullMessage: s.staffBody(ic), Data: data})
		}
	}
}

func (s *Service) staffBody(ic *ipnContext) string {
	return fmt.Sprintf("%s paid for \"%s\" in %s (transaction %s).",
		ic.user.FullName(), ic.instance.Name, ic.course.FullName, ic.n.Get("txn_id"))
}

func (s *Service) messageData(ic *ipnContext) datatypes.JSONMap {
	return datatypes.JSONMap{
		"instance_id": ic.instance.ID,
		"course_id":   ic.course.ID,
		"txn_id":      ic.n.Get("txn_id"),
		"profile_url": fmt.Sprintf("%s/user/view.php?id=%d", s.opts.WWWRoot, ic.user.ID),
	}
}

func (s *Service) mainAdmin(ctx context.Context) *domain.User {
	admins, err := s.users.ListAdmins(ctx)
	if err != nil {
		s.loggerf("level=error msg=admin lookup failed err=%v", err)
		return nil
	}
	if len(admins) == 0 {
		return nil
	}
	return &admins[0]
}

func (s *Service) send(m domain.Message) {
	if s.notifier == nil {
		return
	}
	m.Component = domain.MessageComponent
	s.notifier.Notify(m)
}

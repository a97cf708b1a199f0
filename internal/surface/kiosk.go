package surface

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/ibher16/antrian-lab-ibsi/internal/client"
	"github.com/ibher16/antrian-lab-ibsi/internal/models"
)

// Printer emits the physical ticket slip.
type Printer interface {
	Print(ticket models.Ticket, category models.Category) error
}

// ConsolePrinter renders the slip to a writer. It stands in for the thermal
// printer on stations that do not have one attached.
type ConsolePrinter struct {
	Out io.Writer
}

func (p ConsolePrinter) Print(ticket models.Ticket, category models.Category) error {
	out := p.Out
	if out == nil {
		out = os.Stdout
	}
	_, err := fmt.Fprintf(out,
		"--------------------------------\n"+
			"  NOMOR ANTRIAN\n\n"+
			"      %s\n\n"+
			"  %s\n"+
			"  %s\n"+
			"--------------------------------\n",
		ticket.FormattedCode,
		category.Name,
		ticket.CreatedAt.Format("02 Jan 2006 15:04"))
	return err
}

// Kiosk is the self-service station: it shows the categories and issues a
// printed ticket per button press. It is request/response only; it holds no
// queue projection and needs no event channel.
type Kiosk struct {
	client  *client.Client
	printer Printer
	logger  *zap.Logger

	categories []models.Category
}

func NewKiosk(c *client.Client, printer Printer, logger *zap.Logger) *Kiosk {
	if printer == nil {
		printer = ConsolePrinter{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Kiosk{client: c, printer: printer, logger: logger}
}

// LoadCategories fetches the category list shown on the kiosk buttons.
func (k *Kiosk) LoadCategories(ctx context.Context) ([]models.Category, error) {
	categories, err := k.client.Categories(ctx)
	if err != nil {
		return nil, err
	}
	k.categories = categories
	return categories, nil
}

// Issue creates a ticket in the given category and prints the slip. A
// printer failure does not fail the issue; the ticket already exists and
// the code is reported back regardless.
func (k *Kiosk) Issue(ctx context.Context, categoryID int) (models.Ticket, error) {
	ticket, err := k.client.CreateTicket(ctx, categoryID)
	if err != nil {
		return models.Ticket{}, err
	}
	category := k.category(categoryID)
	start := time.Now()
	if err := k.printer.Print(ticket, category); err != nil {
		k.logger.Warn("print ticket failed",
			zap.String("code", ticket.FormattedCode), zap.Error(err))
	} else {
		k.logger.Info("ticket printed",
			zap.String("code", ticket.FormattedCode),
			zap.Duration("took", time.Since(start)))
	}
	return ticket, nil
}

func (k *Kiosk) category(id int) models.Category {
	for _, c := range k.categories {
		if c.ID == id {
			return c
		}
	}
	return models.Category{ID: id, Name: fmt.Sprintf("Kategori %d", id)}
}

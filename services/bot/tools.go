package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	bookingRepo "bengkelbot/database/repository/booking"
	"bengkelbot/models"
	"bengkelbot/services/agent"
	"bengkelbot/services/catalog"
	"bengkelbot/services/schedule"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
)

// ToolsetDeps carries everything the built-in tools need.
type ToolsetDeps struct {
	Catalog  catalog.CatalogService
	Engine   schedule.SchedulingEngine
	Bookings bookingRepo.BookingRepository
	Prefs    *PrefsStore
	Now      func() time.Time
	Logger   *zap.Logger
}

func (d *ToolsetDeps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

// BuildToolset assembles the tools exposed to the model: pricing, catalog,
// availability, booking, and status lookup.
func BuildToolset(deps ToolsetDeps) []*agent.Tool {
	return []*agent.Tool{
		getPriceTool(deps),
		listServicesTool(deps),
		checkAvailabilityTool(deps),
		findNextAvailableTool(deps),
		bookAppointmentTool(deps),
		getBookingStatusTool(deps),
	}
}

func getPriceTool(deps ToolsetDeps) *agent.Tool {
	return &agent.Tool{
		Name:        "getPrice",
		Description: "Ambil harga sebuah layanan dari katalog. Sertakan ukuran motor (S/M/L/XL) untuk layanan yang harganya tergantung ukuran.",
		Parameters: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"service": {Type: genai.TypeString, Description: "Nama layanan persis seperti di katalog"},
				"size":    {Type: genai.TypeString, Description: "Ukuran motor: S, M, L, atau XL"},
			},
			Required: []string{"service"},
		},
		Handler: func(ctx context.Context, args map[string]any, caller models.CallerIdentity) (any, error) {
			service := stringArg(args, "service")
			size := stringArg(args, "size")
			if service == "" {
				return nil, errors.New("service is required")
			}
			price, err := deps.Catalog.PriceFor(ctx, service, size)
			if err != nil {
				return nil, err
			}
			if size != "" && deps.Prefs != nil {
				deps.Prefs.Update(ctx, models.ConversationKey(caller.Number), SenderPrefs{MotorSize: strings.ToUpper(size)})
			}
			return map[string]any{
				"service":   service,
				"size":      size,
				"price":     price,
				"formatted": FormatRupiah(price),
			}, nil
		},
	}
}

func listServicesTool(deps ToolsetDeps) *agent.Tool {
	return &agent.Tool{
		Name:        "listServices",
		Description: "Daftar semua layanan bengkel beserta kategori dan rentang harga.",
		Handler: func(ctx context.Context, args map[string]any, caller models.CallerIdentity) (any, error) {
			items, err := deps.Catalog.ListServices(ctx)
			if err != nil {
				return nil, err
			}
			out := make([]map[string]any, 0, len(items))
			for _, item := range items {
				out = append(out, map[string]any{
					"name":     item.Name,
					"category": item.Category,
					"prices":   item.Prices,
				})
			}
			return map[string]any{"services": out}, nil
		},
	}
}

func checkAvailabilityTool(deps ToolsetDeps) *agent.Tool {
	return &agent.Tool{
		Name:        "checkAvailability",
		Description: "Cek apakah slot tanggal dan jam tertentu masih tersedia untuk sebuah layanan.",
		Parameters:  slotSchema(),
		Handler: func(ctx context.Context, args map[string]any, caller models.CallerIdentity) (any, error) {
			req, err := resolveSlotRequest(ctx, deps, args, caller)
			if err != nil {
				return nil, err
			}
			res, err := deps.Engine.CheckAvailability(ctx, req)
			if err != nil {
				return nil, err
			}
			return availabilityPayload(req, res), nil
		},
	}
}

func findNextAvailableTool(deps ToolsetDeps) *agent.Tool {
	return &agent.Tool{
		Name:        "findNextAvailable",
		Description: "Cari tanggal terdekat setelah tanggal yang diminta yang masih punya slot untuk layanan ini.",
		Parameters:  slotSchema(),
		Handler: func(ctx context.Context, args map[string]any, caller models.CallerIdentity) (any, error) {
			req, err := resolveSlotRequest(ctx, deps, args, caller)
			if err != nil {
				return nil, err
			}
			slot, err := deps.Engine.FindNextAvailable(ctx, req)
			if err != nil {
				return nil, err
			}
			if slot == nil {
				return map[string]any{
					"found":   false,
					"message": "tidak ada slot tersedia dalam 30 hari ke depan",
				}, nil
			}
			return map[string]any{"found": true, "date": slot.Date, "time": slot.Time}, nil
		},
	}
}

func bookAppointmentTool(deps ToolsetDeps) *agent.Tool {
	return &agent.Tool{
		Name:        "bookAppointment",
		Description: "Buat booking untuk pelanggan pada tanggal dan jam tertentu. Panggil hanya setelah pelanggan mengkonfirmasi.",
		Parameters: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"service":       {Type: genai.TypeString, Description: "Nama layanan persis seperti di katalog"},
				"date":          {Type: genai.TypeString, Description: "Tanggal booking, format YYYY-MM-DD"},
				"time":          {Type: genai.TypeString, Description: "Jam mulai, format HH:mm"},
				"customer_name": {Type: genai.TypeString, Description: "Nama pelanggan"},
			},
			Required: []string{"service", "date", "time"},
		},
		Handler: func(ctx context.Context, args map[string]any, caller models.CallerIdentity) (any, error) {
			req, err := resolveSlotRequest(ctx, deps, args, caller)
			if err != nil {
				return nil, err
			}
			id, err := deps.Engine.Commit(ctx, req)
			if err != nil {
				if errors.Is(err, schedule.ErrCapacityConflict) {
					payload := map[string]any{
						"booked": false,
						"reason": err.Error(),
					}
					if slot, ferr := deps.Engine.FindNextAvailable(ctx, req); ferr == nil && slot != nil {
						payload["next_available_date"] = slot.Date
						payload["next_available_time"] = slot.Time
					}
					return payload, nil
				}
				return nil, err
			}
			if deps.Prefs != nil {
				deps.Prefs.Update(ctx, models.ConversationKey(caller.Number), SenderPrefs{LastService: req.Service})
			}
			return map[string]any{
				"booked":     true,
				"booking_id": id,
				"service":    req.Service,
				"date":       req.Date,
				"time":       req.Time,
				"status":     models.StatusPending,
			}, nil
		},
	}
}

func getBookingStatusTool(deps ToolsetDeps) *agent.Tool {
	return &agent.Tool{
		Name:        "getBookingStatus",
		Description: "Lihat status sebuah booking berdasarkan ID booking.",
		Parameters: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"booking_id": {Type: genai.TypeString, Description: "ID booking yang diberikan saat booking dibuat"},
			},
			Required: []string{"booking_id"},
		},
		Handler: func(ctx context.Context, args map[string]any, caller models.CallerIdentity) (any, error) {
			id := stringArg(args, "booking_id")
			if id == "" {
				return nil, errors.New("booking_id is required")
			}
			booking, err := deps.Bookings.GetByID(ctx, id)
			if err != nil {
				return nil, err
			}
			// Bookings are only visible to the number that made them.
			if booking.CustomerNumber != caller.Number {
				return nil, fmt.Errorf("%w: %s", bookingRepo.ErrBookingNotFound, id)
			}
			return map[string]any{
				"booking_id": booking.ID,
				"service":    booking.Service,
				"date":       booking.Date,
				"time":       booking.Time,
				"status":     booking.Status,
			}, nil
		},
	}
}

func slotSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"service": {Type: genai.TypeString, Description: "Nama layanan persis seperti di katalog"},
			"date":    {Type: genai.TypeString, Description: "Tanggal yang diminta, format YYYY-MM-DD"},
			"time":    {Type: genai.TypeString, Description: "Jam mulai, format HH:mm"},
		},
		Required: []string{"service", "date", "time"},
	}
}

// resolveSlotRequest normalizes the date/time arguments and fills in duration
// and occupancy span from the catalog. Identity always comes from the caller,
// never from the arguments.
func resolveSlotRequest(ctx context.Context, deps ToolsetDeps, args map[string]any, caller models.CallerIdentity) (models.BookingRequest, error) {
	var req models.BookingRequest

	service := stringArg(args, "service")
	if service == "" {
		return req, errors.New("service is required")
	}
	item, err := deps.Catalog.GetService(ctx, service)
	if err != nil {
		return req, err
	}

	date, err := schedule.NormalizeDate(stringArg(args, "date"), deps.now())
	if err != nil {
		return req, err
	}
	startTime, err := schedule.NormalizeTime(stringArg(args, "time"))
	if err != nil {
		return req, err
	}

	name := stringArg(args, "customer_name")
	if name == "" {
		name = caller.Name
	}
	return models.BookingRequest{
		Service:         item.Name,
		Date:            date,
		Time:            startTime,
		DurationMinutes: item.DurationMinutes,
		EstimatedDays:   item.EstimatedDays,
		CustomerNumber:  caller.Number,
		CustomerName:    name,
	}, nil
}

func availabilityPayload(req models.BookingRequest, res *models.AvailabilityResult) map[string]any {
	payload := map[string]any{
		"available": res.Available,
		"date":      req.Date,
		"time":      req.Time,
	}
	if res.Reason != "" {
		payload["reason"] = res.Reason
	}
	if res.OvernightWarning != "" {
		payload["overnight_warning"] = res.OvernightWarning
	}
	return payload
}

func stringArg(args map[string]any, key string) string {
	v, ok := args[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(fmt.Sprintf("%v", v))
}

// FormatRupiah renders a price with dot-separated thousands, e.g. "Rp450.000".
func FormatRupiah(amount float64) string {
	n := int64(amount)
	if n < 1000 {
		return fmt.Sprintf("Rp%d", n)
	}
	var parts []string
	for n > 0 {
		if n >= 1000 {
			parts = append([]string{fmt.Sprintf("%03d", n%1000)}, parts...)
		} else {
			parts = append([]string{fmt.Sprintf("%d", n)}, parts...)
		}
		n /= 1000
	}
	return "Rp" + strings.Join(parts, ".")
}

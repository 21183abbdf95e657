package workflow

import "aulas-booking-client/internal/model"

// fallbackSchedule is the fixed offline schedule: eight hour blocks
// from 07:30 to 15:00, all offered as available.
var fallbackSchedule = []model.TimeSlot{
	{Start: "07:30:00", End: "08:30:00", Available: true},
	{Start: "08:30:00", End: "09:30:00", Available: true},
	{Start: "09:30:00", End: "10:30:00", Available: true},
	{Start: "10:30:00", End: "11:30:00", Available: true},
	{Start: "11:30:00", End: "12:30:00", Available: true},
	{Start: "12:30:00", End: "13:30:00", Available: true},
	{Start: "13:30:00", End: "14:30:00", Available: true},
	{Start: "14:30:00", End: "15:00:00", Available: true},
}

// FallbackSchedule returns a fresh copy of the fixed schedule. Repeated
// reads never share state with the template or with each other.
func FallbackSchedule() []model.TimeSlot {
	out := make([]model.TimeSlot, len(fallbackSchedule))
	copy(out, fallbackSchedule)
	return out
}

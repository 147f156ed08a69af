package prompt

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/goliatone/go-activityform/pkg/activity"
	"github.com/goliatone/go-activityform/pkg/formdata"
)

// MaxTickets bounds how many ticket tiers a prompt session collects.
const MaxTickets = 20

var typeOptions = []string{activity.TypeOffline, activity.TypeOnline}

// Collect walks the activity form on driver and returns the answers as
// entries in the order they were given. Blank optional answers are left out
// so the server applies its own defaults.
func Collect(ctx context.Context, driver Driver) ([]formdata.Entry, error) {
	if driver == nil {
		return nil, errors.New("prompt: driver is required")
	}
	c := &collector{ctx: ctx, driver: driver}

	c.input("name", "活動名稱", true, nil)
	c.input("summary", "活動摘要", false, nil)
	c.textArea("details", "活動詳情")
	c.input("category", "活動分類", true, nil)
	c.input("cover", "活動封面網址（以逗號分隔）", true, nil)

	kind := c.choose("type", "活動類型", typeOptions)
	if kind == activity.TypeOnline {
		c.input("link", "活動連結", true, nil)
	} else {
		c.input("location", "活動地點", true, nil)
		c.input("address", "地址", false, nil)
		c.input("lat", "緯度", false, number)
		c.input("lng", "經度", false, number)
	}

	c.input("totalParticipantCapacity", "活動人數上限", true, integer)
	c.input("startDateTime", "開始時間 (YYYY-MM-DD HH:MM)", true, nil)
	if c.confirm("noEndDate", "無結束日期？", false) {
		c.add("noEndDate", "on")
	} else {
		c.input("endDateTime", "結束時間 (YYYY-MM-DD HH:MM)", true, nil)
	}

	c.input("organizer.name", "主辦單位名稱", true, nil)
	c.input("organizer.contactName", "聯絡人", false, nil)
	c.input("organizer.contactPhone", "聯絡電話", false, nil)
	c.input("organizer.contactEmail", "聯絡信箱", false, nil)

	for i := 0; i < MaxTickets && c.err == nil; i++ {
		prefix := formdata.JoinPath("ticketPrice", strconv.Itoa(i))
		c.input(formdata.JoinPath(prefix, "name"), fmt.Sprintf("票種 %d 名稱", i+1), true, nil)
		c.input(formdata.JoinPath(prefix, "price"), fmt.Sprintf("票種 %d 票價", i+1), true, integer)
		if !c.confirm("", "新增其他票種？", false) {
			break
		}
	}

	if c.err != nil {
		return nil, c.err
	}
	return c.entries, nil
}

// collector records the first error and turns every later call into a no-op.
type collector struct {
	ctx     context.Context
	driver  Driver
	entries []formdata.Entry
	err     error
}

func (c *collector) add(path, value string) {
	c.entries = append(c.entries, formdata.Text(path, value))
}

func (c *collector) input(path, message string, required bool, check func(string) error) {
	if c.err != nil {
		return
	}
	validator := func(s string) error {
		s = strings.TrimSpace(s)
		if s == "" {
			if required {
				return errors.New("此欄位為必填")
			}
			return nil
		}
		if check != nil {
			return check(s)
		}
		return nil
	}
	answer, err := c.driver.Input(c.ctx, InputConfig{Message: message, Validator: validator})
	if err != nil {
		c.err = fmt.Errorf("prompt: %s: %w", path, err)
		return
	}
	if answer = strings.TrimSpace(answer); answer != "" {
		c.add(path, answer)
	}
}

func (c *collector) textArea(path, message string) {
	if c.err != nil {
		return
	}
	answer, err := c.driver.TextArea(c.ctx, TextAreaConfig{Message: message})
	if err != nil {
		c.err = fmt.Errorf("prompt: %s: %w", path, err)
		return
	}
	if strings.TrimSpace(answer) != "" {
		c.add(path, answer)
	}
}

func (c *collector) choose(path, message string, options []string) string {
	if c.err != nil {
		return ""
	}
	idx, err := c.driver.Select(c.ctx, SelectConfig{Message: message, Options: options})
	if err != nil {
		c.err = fmt.Errorf("prompt: %s: %w", path, err)
		return ""
	}
	if idx < 0 || idx >= len(options) {
		c.err = fmt.Errorf("prompt: %s: choice %d out of range", path, idx)
		return ""
	}
	c.add(path, options[idx])
	return options[idx]
}

func (c *collector) confirm(path, message string, def bool) bool {
	if c.err != nil {
		return false
	}
	ok, err := c.driver.Confirm(c.ctx, ConfirmConfig{Message: message, Default: def})
	if err != nil {
		if path == "" {
			path = "confirm"
		}
		c.err = fmt.Errorf("prompt: %s: %w", path, err)
		return false
	}
	return ok
}

func integer(s string) error {
	if _, err := strconv.Atoi(s); err != nil {
		return errors.New("必須為整數")
	}
	return nil
}

func number(s string) error {
	if _, err := strconv.ParseFloat(s, 64); err != nil {
		return errors.New("必須為數字")
	}
	return nil
}

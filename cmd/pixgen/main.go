// Command pixgen prints a PIX BR Code payload for a key and beneficiary,
// optionally draws it as a QR PNG and registers it as a page on a running
// donation server.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/alovak/pix-donations/donation/models"
	"github.com/alovak/pix-donations/internal/beneficiary"
	"github.com/alovak/pix-donations/internal/brcode"
	"github.com/alovak/pix-donations/internal/donationclient"
	"github.com/alovak/pix-donations/internal/expiry"
	"github.com/alovak/pix-donations/internal/qrimage"
)

var (
	flagKey    = flag.String("key", "", "PIX key (e-mail, phone, CPF/CNPJ or random key)")
	flagName   = flag.String("name", "", "beneficiary name")
	flagCity   = flag.String("city", "", "beneficiary city")
	flagQR     = flag.String("qr", "", "write the QR code PNG to this file")
	flagSize   = flag.Int("size", qrimage.DefaultSize, "QR code edge in pixels")
	flagPrint  = flag.Bool("print", false, "print the page JSON only, do not POST")
	flagServer = flag.String("server", "", "donation server base URL; when set the page is registered there")
	flagSlug   = flag.String("slug", "", "page slug used with -server")
	flagTTL    = flag.String("ttl", expiry.Countdown(expiry.DefaultTTL), "display window as MM:SS")
)

func main() {
	flag.Parse()
	if strings.TrimSpace(*flagKey) == "" {
		fail("-key is required")
	}
	ttl := must1(expiry.ParseCountdown(*flagTTL))

	payload, profile := must2(generate(*flagKey, *flagName, *flagCity))
	now := time.Now()

	fmt.Printf("NAME: %s\nCITY: %s\n", profile.Name, profile.City)
	fmt.Printf("PAYLOAD: %s\n", payload)
	fmt.Printf("KEY: %s\n", must1(keyOf(payload)))
	fmt.Printf("CHECKSUM: %s\n", describe(payload))
	fmt.Printf("EXPIRES: %s (%s)\n", expiry.ExpiresAt(now, ttl).Format(time.RFC3339), expiry.Countdown(ttl))

	if *flagQR != "" {
		png := must1(qrimage.PNG(payload, *flagSize))
		must(os.WriteFile(*flagQR, png, 0o644))
		fmt.Printf("QR: %s\n", *flagQR)
	}

	req := models.CreatePage{
		Slug:            *flagSlug,
		PixKey:          strings.TrimSpace(*flagKey),
		BeneficiaryName: profile.Name,
		BeneficiaryCity: profile.City,
	}

	if *flagPrint {
		enc, _ := json.MarshalIndent(req, "", "  ")
		fmt.Println(string(enc))
		return
	}
	if *flagServer == "" {
		return
	}
	if req.Slug == "" {
		fail("-slug is required with -server")
	}

	cli := donationclient.New(*flagServer, &http.Client{Timeout: 10 * time.Second})
	ctx := context.Background()
	if _, err := cli.CreatePage(ctx, req); err != nil && !errors.Is(err, donationclient.ErrConflict) {
		fail("%v", err)
	}
	charge := must1(cli.IssueCharge(ctx, req.Slug))
	fmt.Printf("Registered page %s; server code valid for %s.\n", req.Slug, charge.Countdown)
}

// generate normalises the beneficiary and encodes the payload.
func generate(key, name, city string) (string, brcode.Profile, error) {
	profile := beneficiary.Profile(name, city)
	if profile.Name == "" || profile.City == "" {
		return "", profile, errors.New("-name and -city are required")
	}
	payload, err := brcode.Encode(strings.TrimSpace(key), profile)
	if err != nil {
		return "", profile, err
	}
	return payload, profile, nil
}

// keyOf reads the PIX key back out of the merchant account template.
func keyOf(payload string) (string, error) {
	fields, err := brcode.Parse(payload)
	if err != nil {
		return "", err
	}
	account, ok := fields.Lookup(brcode.TagMerchantAccount)
	if !ok {
		return "", errors.New("payload has no merchant account field")
	}
	key, ok := account.Child(brcode.TagPixKey)
	if !ok {
		return "", errors.New("merchant account has no pix key")
	}
	return key.Value, nil
}

func describe(payload string) string {
	err := brcode.Validate(payload)
	_, claimed := brcode.Split(payload)
	if err != nil {
		return fmt.Sprintf("%s (%v)", claimed, err)
	}
	return claimed + " (ok)"
}

func must(err error) {
	if err != nil {
		fail("%v", err)
	}
}
func must1[T any](v T, err error) T {
	if err != nil {
		fail("%v", err)
	}
	return v
}
func must2[T, U any](v T, u U, err error) (T, U) {
	if err != nil {
		fail("%v", err)
	}
	return v, u
}
func fail(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}

// Package main generates synthetic vessel telemetry in the combined export format,
// for exercising the dashboard without access to fleet data.
package main

import (
	"bytes"
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"math"
	"math/rand"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"

	"github.com/chrissnell/powerspeed/internal/log"
	"github.com/chrissnell/powerspeed/internal/source"
	"github.com/chrissnell/powerspeed/internal/types"
)

// specific fuel oil consumption in g/kWh
const sfoc = 175.0

var header = func() []string {
	h := append([]string{"_id"}, types.RequiredColumns...)
	return append(h, types.ColIsSpeedDropValid, types.ColIsDeltaPDOnSpeedValid,
		types.ColISOCorrectedFOC, types.ColMEFOCIdealPD, types.ColMEFOCIdealPDCor)
}()

// VesselProfile shapes one vessel's synthetic power curve: power = Coefficient * speed³
type VesselProfile struct {
	ID          int
	Coefficient float64
	MinSpeed    float64
	MaxSpeed    float64
}

// TelemetryEmulator generates rows for a set of vessels
type TelemetryEmulator struct {
	rng      *rand.Rand
	profiles []VesselProfile
}

func NewTelemetryEmulator(ids []int, seed int64) *TelemetryEmulator {
	rng := rand.New(rand.NewSource(seed))
	e := &TelemetryEmulator{rng: rng}
	for _, id := range ids {
		minSpeed := 6 + rng.Float64()*3
		e.profiles = append(e.profiles, VesselProfile{
			ID:          id,
			Coefficient: 0.9 + rng.Float64()*0.8,
			MinSpeed:    minSpeed,
			MaxSpeed:    minSpeed + 5 + rng.Float64()*3,
		})
	}
	return e
}

// Row generates one observation for the vessel profile
func (e *TelemetryEmulator) Row(p VesselProfile) []string {
	r := e.rng
	sog := p.MinSpeed + r.Float64()*(p.MaxSpeed-p.MinSpeed)
	stw := sog + (r.Float64()-0.5)*1.2
	bf := r.Intn(8)

	// Weather adds resistance on top of the still-water curve
	power := p.Coefficient * math.Pow(stw, 3) * (1 + 0.03*float64(bf)) * (1 + r.NormFloat64()*0.05)
	minutes := 30 + r.Float64()*30
	iso := power * sfoc * 24 / 1e6
	ideal := iso * (0.9 + r.Float64()*0.1)
	idealCor := ideal * (0.97 + r.Float64()*0.06)

	valid := func() string {
		if r.Float64() < 0.9 {
			return "1"
		}
		return "0"
	}

	return []string{
		uuid.New().String(),
		strconv.Itoa(p.ID),
		fmtFloat(power, 1),
		fmtFloat(minutes, 0),
		fmtFloat(6+r.Float64()*5, 2),
		fmtFloat(r.Float64()*360, 0),
		fmtFloat(sog, 2),
		fmtFloat(stw, 2),
		strconv.Itoa(bf),
		valid(),
		valid(),
		fmtFloat(iso, 3),
		fmtFloat(ideal, 3),
		fmtFloat(idealCor, 3),
	}
}

// Write emits a header and rowsPerVessel rows for every vessel, interleaved
func (e *TelemetryEmulator) Write(w io.Writer, rowsPerVessel int) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	for i := 0; i < rowsPerVessel; i++ {
		for _, p := range e.profiles {
			if err := cw.Write(e.Row(p)); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

func fmtFloat(v float64, prec int) string {
	return strconv.FormatFloat(v, 'f', prec, 64)
}

func parseIDs(s string) ([]int, error) {
	var ids []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid vessel ID %q", part)
		}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("no vessel IDs given")
	}
	return ids, nil
}

func main() {
	var (
		vessels  = flag.String("vessels", "1023,1005,1007,1017,1004,1021", "Comma-separated vessel IDs to simulate")
		rows     = flag.Int("rows", 200, "Rows per vessel")
		seed     = flag.Int64("seed", time.Now().UnixNano(), "Random seed")
		out      = flag.String("out", "telemetry.csv", "Output CSV path ('-' for stdout)")
		endpoint = flag.String("s3-endpoint", "", "Upload to this S3-compatible endpoint instead of writing a file")
		bucket   = flag.String("s3-bucket", "", "Bucket to upload to")
		object   = flag.String("s3-object", "telemetry.csv", "Object name to upload as")
		useSSL   = flag.Bool("s3-ssl", false, "Use TLS for the S3 endpoint")
		debug    = flag.Bool("debug", false, "Turn on debugging output")
	)
	flag.Parse()

	if err := log.Init(*debug); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ids, err := parseIDs(*vessels)
	if err != nil {
		log.Fatalf("%v", err)
	}
	emu := NewTelemetryEmulator(ids, *seed)

	if *endpoint != "" {
		if err := upload(emu, *rows, source.S3Config{
			Endpoint:        *endpoint,
			AccessKeyID:     os.Getenv("POWERSPEED_S3_ACCESS_KEY"),
			SecretAccessKey: os.Getenv("POWERSPEED_S3_SECRET_KEY"),
			UseSSL:          *useSSL,
		}, *bucket, *object); err != nil {
			log.Fatalf("upload failed: %v", err)
		}
		log.Infof("uploaded %d rows to s3://%s/%s", *rows*len(ids), *bucket, *object)
		return
	}

	var w io.Writer = os.Stdout
	if *out != "-" {
		f, err := os.Create(*out)
		if err != nil {
			log.Fatalf("error creating %s: %v", *out, err)
		}
		defer f.Close()
		w = f
	}
	if err := emu.Write(w, *rows); err != nil {
		log.Fatalf("error writing telemetry: %v", err)
	}
	log.Infof("wrote %d rows for %d vessels to %s", *rows*len(ids), len(ids), *out)
}

func upload(emu *TelemetryEmulator, rows int, cfg source.S3Config, bucket, object string) error {
	if bucket == "" {
		return fmt.Errorf("-s3-bucket is required")
	}
	client, err := source.NewS3Client(cfg)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := emu.Write(&buf, rows); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	_, err = client.PutObject(ctx, bucket, object, &buf, int64(buf.Len()), minio.PutObjectOptions{ContentType: "text/csv"})
	return err
}

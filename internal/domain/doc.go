// Package domain derives a daily running verdict for an asthmatic runner from
// hourly weather and air-quality forecasts.
//
// # Data Source
//
// Forecasts come from the Open-Meteo forecast and air-quality APIs, requested
// in the runner's local time zone. Both return hourly arrays keyed by a
// local timestamp without offset:
//
//	"time": ["2024-04-26T00:00", "2024-04-26T01:00", ...]
//
// Missing samples are JSON null and decode to an absent [Float], never 0.
//
// # Target Slot
//
// The external scheduler triggers a run at 06:10 local time. The verdict is
// evaluated for the hour the run falls in (06:00), matched against the
// series by the "YYYY-MM-DDTHH" prefix. See [TargetSlot].
//
// # Air Quality Index
//
// The US EPA AQI is preferred from the source's own index series. Hours
// without one can be derived from particulate concentration by linear
// interpolation over the EPA breakpoint tables:
//
//	PM2.5 µg/m³:  0-12.0 | 12.1-35.4 | 35.5-55.4 | 55.5-150.4 | 150.5-250.4 | 250.5-350.4 | 350.5-500.4
//	PM10  µg/m³:  0-54   | 55-154    | 155-254   | 255-354    | 355-424     | 425-504     | 505-604
//	AQI:          0-50   | 51-100    | 101-150   | 151-200    | 201-300     | 301-400     | 401-500
//
// PM2.5 wins over PM10. Concentrations above the table saturate at 500.
// When the target hour has no usable AQI, the nearest earlier hour is used,
// then the nearest later hour. See [ResolveAirQuality] and [AQIMode].
//
// # Verdict
//
// AQI dominates: an asthmatic runner stays indoors from AQI 101 regardless of
// temperature. Temperature and humidity form a secondary heat-stress check.
//
//	AQI >= 101                     Indoor only
//	AQI 51-100, temp >= 32°C       Indoor only
//	AQI 51-100                     Caution
//	temp >= 32°C                   Indoor only
//	temp >= 28°C or RH >= 75%      Caution
//	otherwise                      Safe to run
//
// Unknown inputs never trigger a rule. See [Classify].
package domain

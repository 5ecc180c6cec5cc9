/*
Package attendsdk provides a client SDK for the StepAttend attendance service.

# Overview

A Client wraps one http.Client configured with a chain of round trippers:

  - bearer: adds "Authorization: Bearer <token>" from a TokenSource
  - throttle: optional client-side rate limit (golang.org/x/time/rate)
  - logging: adds an X-Request-ID and logs method, path, status and duration

The TokenSource is read immediately before every request, so storing or
clearing a session token takes effect on the next call:

	store := session.NewMemoryStore()
	client := attendsdk.NewClient("http://10.0.2.2:8080", store,
		attendsdk.WithTimeout(10*time.Second),
		attendsdk.WithLogger(logger),
	)

	courses, err := client.ListEnrolledCourses(ctx)

# Authentication

Login returns the decoded 2xx body without judging it. A response whose
Message equals MFARequiredMessage is a challenge; resend the same credentials
with the one-time code:

	resp, err := client.Login(ctx, attendsdk.LoginRequest{Username: u, Password: p})
	if err == nil && resp.Message == attendsdk.MFARequiredMessage {
		resp, err = client.Login(ctx, attendsdk.LoginRequest{Username: u, Password: p, OTP: code})
	}

The interactive flow built on top of this lives in internal/attend/authflow.

# Error Handling

Every non-2xx response is returned as *APIError. Its Error method yields the
normalized message (see ErrorMessage); RawBody gives the body verbatim:

	if _, err := client.GetProfile(ctx); err != nil {
		var apiErr *attendsdk.APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized {
			// session expired
		}
		return err
	}

Transport failures are wrapped as "failed to send request: ...". Nothing is
retried.

# Thread Safety

A Client is safe for concurrent use.
*/
package attendsdk

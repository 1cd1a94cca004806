package optimize

// analyzerScript is the program run inside the isolated context. It
// parses each pair to RGB, computes WCAG contrast ratios, and maps the
// median ratio to a contrast percentage suggestion:
//
//   - median below 4.5: scale up from a 110% base, +10% per 0.5 of
//     deficit;
//   - median above 9 (overly harsh): ease back to 100%;
//   - otherwise: no suggestion (null).
//
// The median is used instead of the mean so decorative outlier elements
// cannot skew the result.
const analyzerScript = `
var NAMED = {
  black: [0, 0, 0], white: [255, 255, 255], red: [255, 0, 0],
  green: [0, 128, 0], blue: [0, 0, 255], gray: [128, 128, 128],
  grey: [128, 128, 128], yellow: [255, 255, 0], orange: [255, 165, 0]
};

function hslToRgb(h, s, l) {
  h = ((h % 360) + 360) % 360 / 360;
  s = Math.min(Math.max(s / 100, 0), 1);
  l = Math.min(Math.max(l / 100, 0), 1);
  if (s === 0) {
    var v = Math.round(l * 255);
    return [v, v, v];
  }
  var q = l < 0.5 ? l * (1 + s) : l + s - l * s;
  var p = 2 * l - q;
  function hue(t) {
    if (t < 0) t += 1;
    if (t > 1) t -= 1;
    if (t < 1 / 6) return p + (q - p) * 6 * t;
    if (t < 1 / 2) return q;
    if (t < 2 / 3) return p + (q - p) * (2 / 3 - t) * 6;
    return p;
  }
  return [
    Math.round(hue(h + 1 / 3) * 255),
    Math.round(hue(h) * 255),
    Math.round(hue(h - 1 / 3) * 255)
  ];
}

function parseColor(s) {
  if (!s) return null;
  s = String(s).trim().toLowerCase();
  if (s in NAMED) return NAMED[s];

  var m = s.match(/^#([0-9a-f]{3})$/);
  if (m) {
    return [
      parseInt(m[1][0] + m[1][0], 16),
      parseInt(m[1][1] + m[1][1], 16),
      parseInt(m[1][2] + m[1][2], 16)
    ];
  }
  m = s.match(/^#([0-9a-f]{6})$/);
  if (m) {
    var v = parseInt(m[1], 16);
    return [(v >> 16) & 255, (v >> 8) & 255, v & 255];
  }
  m = s.match(/^rgba?\(([^)]+)\)$/);
  if (m) {
    var parts = m[1].split(/[,\s\/]+/).filter(Boolean);
    if (parts.length < 3) return null;
    if (parts.length > 3 && parseFloat(parts[3]) === 0) return null;
    return [parseFloat(parts[0]), parseFloat(parts[1]), parseFloat(parts[2])];
  }
  m = s.match(/^hsla?\(([^)]+)\)$/);
  if (m) {
    var hp = m[1].split(/[,\s\/]+/).filter(Boolean);
    if (hp.length < 3) return null;
    if (hp.length > 3 && parseFloat(hp[3]) === 0) return null;
    return hslToRgb(parseFloat(hp[0]), parseFloat(hp[1]), parseFloat(hp[2]));
  }
  return null;
}

function luminance(rgb) {
  function lin(c) {
    c /= 255;
    return c <= 0.04045 ? c / 12.92 : Math.pow((c + 0.055) / 1.055, 2.4);
  }
  return 0.2126 * lin(rgb[0]) + 0.7152 * lin(rgb[1]) + 0.0722 * lin(rgb[2]);
}

function contrast(a, b) {
  var l1 = luminance(a), l2 = luminance(b);
  if (l1 < l2) { var t = l1; l1 = l2; l2 = t; }
  return (l1 + 0.05) / (l2 + 0.05);
}

function analyze(pairs) {
  var ratios = [];
  for (var i = 0; i < pairs.length; i++) {
    var fg = parseColor(pairs[i].fg);
    var bg = parseColor(pairs[i].bg);
    if (!fg || !bg) continue;
    ratios.push(contrast(fg, bg));
  }
  if (ratios.length === 0) return null;

  ratios.sort(function (a, b) { return a - b; });
  var median;
  var mid = Math.floor(ratios.length / 2);
  if (ratios.length % 2 === 0) {
    median = (ratios[mid - 1] + ratios[mid]) / 2;
  } else {
    median = ratios[mid];
  }

  if (median < 4.5) {
    return Math.round(110 + ((4.5 - median) / 0.5) * 10);
  }
  if (median > 9) {
    return 100;
  }
  return null;
}
`
